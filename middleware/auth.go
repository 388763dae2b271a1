package middleware

import (
	"context"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/saifurrahmanctg/micro-earn-server/models"
	"github.com/saifurrahmanctg/micro-earn-server/utils"
)

// AuthMiddleware authenticates the bearer token and injects the caller's
// email and token role into the request context.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authz := r.Header.Get("Authorization")
		if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
			utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{
				Success: false,
				Message: "Unauthorized: No token provided",
			})
			return
		}
		email, role, err := utils.ExtractIdentity(r)
		if err != nil {
			if strings.Contains(err.Error(), "expired") {
				utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{
					Success: false,
					Message: "Session expired, please log in again",
				})
				return
			}
			utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{
				Success: false,
				Message: "Unauthorized: Invalid token",
			})
			return
		}

		ctx := context.WithValue(r.Context(), utils.UserEmailKey, email)
		ctx = context.WithValue(ctx, utils.UserRoleKey, role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RoleGuard gates routes on the caller's current role. The role is read from
// the users table, not the token, so a demoted account loses access as soon
// as its row changes.
type RoleGuard struct {
	db *gorm.DB
}

func NewRoleGuard(db *gorm.DB) *RoleGuard {
	return &RoleGuard{db: db}
}

func (g *RoleGuard) require(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email, ok := utils.GetUserEmail(r)
			if !ok || email == "" {
				utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{
					Success: false,
					Message: "Unauthorized",
				})
				return
			}
			var user models.User
			if err := g.db.Select("role").Where("email = ?", email).First(&user).Error; err != nil {
				utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{
					Success: false,
					Message: "Forbidden",
				})
				return
			}
			if user.Role != role {
				utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{
					Success: false,
					Message: "Forbidden: " + role + " access required",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (g *RoleGuard) RequireAdmin(next http.Handler) http.Handler {
	return g.require(models.RoleAdmin)(next)
}

func (g *RoleGuard) RequireBuyer(next http.Handler) http.Handler {
	return g.require(models.RoleBuyer)(next)
}

func (g *RoleGuard) RequireWorker(next http.Handler) http.Handler {
	return g.require(models.RoleWorker)(next)
}
