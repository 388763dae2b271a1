package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/saifurrahmanctg/micro-earn-server/middleware"
	"github.com/saifurrahmanctg/micro-earn-server/models"
	"github.com/saifurrahmanctg/micro-earn-server/utils"
)

type ReportController struct {
	DB *gorm.DB
}

func NewReportController(db *gorm.DB) *ReportController {
	return &ReportController{DB: db}
}

type createReportRequest struct {
	ReportedEmail string `json:"reported_email"`
	TaskID        uint   `json:"task_id"`
	Reason        string `json:"reason" validate:"required"`
}

// Create files an abuse report against a user or a task. Reports never touch
// the ledger; admins act on them out of band.
func (c *ReportController) Create(w http.ResponseWriter, r *http.Request) {
	email, _ := utils.GetUserEmail(r)

	var req createReportRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	if req.ReportedEmail == "" && req.TaskID == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "reported_email or task_id is required"})
		return
	}

	report := models.Report{
		ReporterEmail: email,
		ReportedEmail: req.ReportedEmail,
		Reason:        req.Reason,
		ReportDate:    time.Now(),
	}
	if req.TaskID != 0 {
		id := req.TaskID
		report.TaskID = &id
	}
	if err := c.DB.Create(&report).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Could not file report"})
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Report filed", Data: report})
}

// Delete dismisses a handled report (admin only).
func (c *ReportController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid report id"})
		return
	}
	res := c.DB.Delete(&models.Report{}, id)
	if res.Error != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Could not delete report"})
		return
	}
	if res.RowsAffected == 0 {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Not found"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Report deleted"})
}

// List returns all reports for the admin dashboard, newest first.
func (c *ReportController) List(w http.ResponseWriter, r *http.Request) {
	var reports []models.Report
	if err := c.DB.Order("report_date DESC").Find(&reports).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Could not load reports"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "OK", Data: reports})
}
