package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/saifurrahmanctg/micro-earn-server/ledger"
	"github.com/saifurrahmanctg/micro-earn-server/middleware"
	"github.com/saifurrahmanctg/micro-earn-server/models"
	"github.com/saifurrahmanctg/micro-earn-server/utils"
)

type SubmissionController struct {
	DB     *gorm.DB
	Engine *ledger.Engine
}

func NewSubmissionController(db *gorm.DB, engine *ledger.Engine) *SubmissionController {
	return &SubmissionController{DB: db, Engine: engine}
}

type createSubmissionRequest struct {
	TaskID           uint   `json:"task_id"`
	SubmissionDetail string `json:"submission_detail" validate:"required"`
}

// Create submits proof of work for a task. Task fields are copied server
// side; one submission per worker per task.
func (c *SubmissionController) Create(w http.ResponseWriter, r *http.Request) {
	email, _ := utils.GetUserEmail(r)

	var req createSubmissionRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	if req.TaskID == 0 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "task_id is required"})
		return
	}

	var worker models.User
	if err := c.DB.Where("email = ?", email).First(&worker).Error; err != nil {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	sub := models.Submission{
		TaskID:           req.TaskID,
		WorkerEmail:      worker.Email,
		WorkerName:       worker.Name,
		SubmissionDetail: req.SubmissionDetail,
	}
	if err := c.Engine.Submit(r.Context(), &sub); err != nil {
		// a repeat submission is a no-op, not an error
		if errors.Is(err, ledger.ErrDuplicateSubmission) {
			utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "You have already submitted to this task"})
			return
		}
		utils.WriteLedgerError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Submission received", Data: sub})
}

// ForWorker lists a worker's submissions, newest first, with ?page= and
// ?size= query params. Workers see their own; admins can see anyone's.
func (c *SubmissionController) ForWorker(w http.ResponseWriter, r *http.Request) {
	email, ok := pathEmail(r)
	if !ok {
		writeForbidden(w)
		return
	}

	page := 0
	if s := r.URL.Query().Get("page"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v >= 0 {
			page = v
		}
	}
	size := 10
	if s := r.URL.Query().Get("size"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 && v <= 100 {
			size = v
		}
	}

	subs, total, err := c.Engine.WorkerSubmissions(r.Context(), email, page, size)
	if err != nil {
		utils.WriteLedgerError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "OK",
		Data: map[string]interface{}{
			"submissions": subs,
			"total":       total,
			"page":        page,
			"size":        size,
		},
	})
}

// PendingForBuyer lists pending submissions against a buyer's tasks, oldest
// first so the review queue is stable.
func (c *SubmissionController) PendingForBuyer(w http.ResponseWriter, r *http.Request) {
	email, ok := pathEmail(r)
	if !ok {
		writeForbidden(w)
		return
	}
	subs, err := c.Engine.BuyerPendingSubmissions(r.Context(), email)
	if err != nil {
		utils.WriteLedgerError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "OK", Data: subs})
}

// Approve pays the worker and consumes a task slot.
func (c *SubmissionController) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid submission id"})
		return
	}
	email, _ := utils.GetUserEmail(r)
	if err := c.Engine.ApproveSubmission(r.Context(), uint(id), email); err != nil {
		utils.WriteLedgerError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Submission approved"})
}

// Reject declines a submission and releases its slot back to the task.
func (c *SubmissionController) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid submission id"})
		return
	}
	email, _ := utils.GetUserEmail(r)
	if err := c.Engine.RejectSubmission(r.Context(), uint(id), email); err != nil {
		utils.WriteLedgerError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Submission rejected"})
}
