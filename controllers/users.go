package controllers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/saifurrahmanctg/micro-earn-server/middleware"
	"github.com/saifurrahmanctg/micro-earn-server/models"
	"github.com/saifurrahmanctg/micro-earn-server/utils"
)

type UserController struct {
	DB *gorm.DB
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{DB: db}
}

// List returns all users except admins, for the admin dashboard.
func (c *UserController) List(w http.ResponseWriter, r *http.Request) {
	var users []models.User
	if err := c.DB.Where("role <> ?", models.RoleAdmin).Order("created_at DESC").Find(&users).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Could not load users"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "OK", Data: users})
}

// GetByEmail returns the caller's own profile. Admins can look up anyone.
func (c *UserController) GetByEmail(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]
	caller, _ := utils.GetUserEmail(r)
	role, _ := utils.GetUserRole(r)
	if caller != email && role != models.RoleAdmin {
		utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Forbidden"})
		return
	}
	var user models.User
	if err := c.DB.Where("email = ?", email).First(&user).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Not found"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "OK", Data: user})
}

// GetRole returns just the role for an email. Clients use it to route to the
// right dashboard after login.
func (c *UserController) GetRole(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]
	var user models.User
	if err := c.DB.Select("role").Where("email = ?", email).First(&user).Error; err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Not found"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "OK", Data: map[string]string{"role": user.Role}})
}

type updateRoleRequest struct {
	Role string `json:"role" validate:"required,rolecheck"`
}

// UpdateRole changes a user's role (admin only). Coins are untouched.
func (c *UserController) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid user id"})
		return
	}
	var req updateRoleRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	res := c.DB.Model(&models.User{}).Where("id = ?", id).Update("role", req.Role)
	if res.Error != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Could not update role"})
		return
	}
	if res.RowsAffected == 0 {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Not found"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Role updated"})
}

// Delete removes a user account (admin only).
func (c *UserController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid user id"})
		return
	}
	res := c.DB.Delete(&models.User{}, id)
	if res.Error != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Could not delete user"})
		return
	}
	if res.RowsAffected == 0 {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Not found"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "User deleted"})
}
