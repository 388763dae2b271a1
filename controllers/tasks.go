package controllers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/saifurrahmanctg/micro-earn-server/ledger"
	"github.com/saifurrahmanctg/micro-earn-server/middleware"
	"github.com/saifurrahmanctg/micro-earn-server/models"
	"github.com/saifurrahmanctg/micro-earn-server/utils"
)

type TaskController struct {
	DB     *gorm.DB
	Engine *ledger.Engine
}

func NewTaskController(db *gorm.DB, engine *ledger.Engine) *TaskController {
	return &TaskController{DB: db, Engine: engine}
}

type createTaskRequest struct {
	TaskTitle       string `json:"task_title" validate:"required"`
	TaskDetail      string `json:"task_detail" validate:"required"`
	RequiredWorkers int    `json:"required_workers" validate:"required"`
	PayableAmount   int64  `json:"payable_amount" validate:"required"`
	CompletionDate  string `json:"completion_date" validate:"required"`
	SubmissionInfo  string `json:"submission_info"`
	TaskImageURL    string `json:"task_image_url"`
}

// Create posts a task and reserves required_workers * payable_amount coins
// from the buyer in the same transaction.
func (c *TaskController) Create(w http.ResponseWriter, r *http.Request) {
	email, _ := utils.GetUserEmail(r)

	var req createTaskRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	var buyer models.User
	if err := c.DB.Where("email = ?", email).First(&buyer).Error; err != nil {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	task := models.Task{
		BuyerEmail:      buyer.Email,
		BuyerName:       buyer.Name,
		TaskTitle:       req.TaskTitle,
		TaskDetail:      req.TaskDetail,
		RequiredWorkers: req.RequiredWorkers,
		PayableAmount:   req.PayableAmount,
		CompletionDate:  req.CompletionDate,
		SubmissionInfo:  req.SubmissionInfo,
	}
	if req.TaskImageURL != "" {
		task.TaskImageURL = &req.TaskImageURL
	}

	if err := c.Engine.CreateTask(r.Context(), &task); err != nil {
		utils.WriteLedgerError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Task created", Data: task})
}

// Open lists tasks with remaining worker slots. Supports ?search=,
// ?sort=asc|desc (by payable_amount), ?minReward= and ?maxReward=.
func (c *TaskController) Open(w http.ResponseWriter, r *http.Request) {
	q := ledger.TaskQuery{
		Search: r.URL.Query().Get("search"),
		Sort:   r.URL.Query().Get("sort"),
	}
	if s := r.URL.Query().Get("minReward"); s != "" {
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			q.MinReward = v
		}
	}
	if s := r.URL.Query().Get("maxReward"); s != "" {
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			q.MaxReward = v
		}
	}

	tasks, err := c.Engine.OpenTasks(r.Context(), q)
	if err != nil {
		utils.WriteLedgerError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "OK", Data: tasks})
}

// Get returns a single task by id.
func (c *TaskController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid task id"})
		return
	}
	task, err := c.Engine.GetTask(r.Context(), uint(id))
	if err != nil {
		utils.WriteLedgerError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "OK", Data: task})
}

// ByBuyer lists a buyer's own tasks, newest deadline first.
func (c *TaskController) ByBuyer(w http.ResponseWriter, r *http.Request) {
	email, ok := pathEmail(r)
	if !ok {
		writeForbidden(w)
		return
	}
	tasks, err := c.Engine.TasksByBuyer(r.Context(), email)
	if err != nil {
		utils.WriteLedgerError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "OK", Data: tasks})
}

// All lists every task for the admin dashboard.
func (c *TaskController) All(w http.ResponseWriter, r *http.Request) {
	tasks, err := c.Engine.AllTasks(r.Context())
	if err != nil {
		utils.WriteLedgerError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "OK", Data: tasks})
}

type updateTaskRequest struct {
	TaskTitle      string `json:"task_title" validate:"required"`
	TaskDetail     string `json:"task_detail" validate:"required"`
	SubmissionInfo string `json:"submission_info"`
}

// Update rewrites a task's descriptive fields. Slots and reward are fixed
// once the coins are reserved.
func (c *TaskController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid task id"})
		return
	}
	email, _ := utils.GetUserEmail(r)

	var req updateTaskRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	if err := c.Engine.UpdateTask(r.Context(), uint(id), email, req.TaskTitle, req.TaskDetail, req.SubmissionInfo); err != nil {
		utils.WriteLedgerError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Task updated"})
}

// Delete removes a task, refunds the unconsumed slots and voids pending
// submissions. Owner or admin only.
func (c *TaskController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid task id"})
		return
	}
	email, _ := utils.GetUserEmail(r)
	role, _ := utils.GetUserRole(r)

	if err := c.Engine.DeleteTask(r.Context(), uint(id), email, role); err != nil {
		utils.WriteLedgerError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Task deleted"})
}
