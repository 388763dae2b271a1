package controllers

import (
	"errors"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/saifurrahmanctg/micro-earn-server/middleware"
	"github.com/saifurrahmanctg/micro-earn-server/models"
	"github.com/saifurrahmanctg/micro-earn-server/utils"
)

type AuthController struct {
	DB *gorm.DB
}

func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{DB: db}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,emailfmt"`
	Password string `json:"password" validate:"required,pwdmin"`
	Role     string `json:"role" validate:"required,rolecheck"`
	PhotoURL string `json:"photo_url"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,emailfmt"`
	Password string `json:"password" validate:"required"`
}

// Register creates a user with the starting coin balance for its role.
// Registering an existing email is not an error so a client retry after a
// dropped response does not surface as a failure.
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Internal server error"})
		return
	}

	user := models.User{
		Name:      req.Name,
		Email:     req.Email,
		Password:  string(hash),
		Role:      req.Role,
		Coins:     models.SignupCoins(req.Role),
		LastLogin: time.Now(),
	}
	if req.PhotoURL != "" {
		user.PhotoURL = &req.PhotoURL
	}

	if err := c.DB.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "user already exists"})
			return
		}
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Could not create user"})
		return
	}

	token, err := utils.GenerateToken(user.Email, user.Role)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Internal server error"})
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{
		Success: true,
		Message: "User registered",
		Data:    map[string]interface{}{"user": user, "token": token},
	})
}

// Login verifies credentials and issues an access token.
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	var user models.User
	if err := c.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		// same message for unknown email and bad password
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Invalid credentials"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Invalid credentials"})
		return
	}

	token, err := utils.GenerateToken(user.Email, user.Role)
	if err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Internal server error"})
		return
	}

	_ = c.DB.Model(&models.User{}).Where("id = ?", user.ID).
		Update("last_login", time.Now()).Error

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Login successful",
		Data:    map[string]interface{}{"token": token, "user": user},
	})
}

// Logout revokes the presented token so it cannot be replayed before its
// expiry. Without a revocation store the token just ages out.
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	if err := utils.RevokeRequestToken(r); err != nil {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Logged out"})
}

// TouchLogin records a fresh login timestamp for the authenticated user.
func (c *AuthController) TouchLogin(w http.ResponseWriter, r *http.Request) {
	email, ok := utils.GetUserEmail(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	res := c.DB.Model(&models.User{}).Where("email = ?", email).
		Update("last_login", time.Now())
	if res.Error != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Internal server error"})
		return
	}
	if res.RowsAffected == 0 {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Not found"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Login time updated"})
}
