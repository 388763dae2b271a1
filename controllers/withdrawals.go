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

// CoinsPerDollar fixes the cash-out rate: 20 coins pay one dollar.
const CoinsPerDollar = 20

type WithdrawalController struct {
	DB     *gorm.DB
	Engine *ledger.Engine
}

func NewWithdrawalController(db *gorm.DB, engine *ledger.Engine) *WithdrawalController {
	return &WithdrawalController{DB: db, Engine: engine}
}

type withdrawalRequest struct {
	WithdrawalCoin int64  `json:"withdrawal_coin" validate:"required"`
	PaymentSystem  string `json:"payment_system" validate:"required"`
	AccountNumber  string `json:"account_number" validate:"required"`
}

// Request files a cash-out request. The dollar amount is derived server side
// and coins stay on the balance until an admin approves.
func (c *WithdrawalController) Request(w http.ResponseWriter, r *http.Request) {
	email, _ := utils.GetUserEmail(r)

	var req withdrawalRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	if req.WithdrawalCoin < CoinsPerDollar {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Minimum withdrawal is 20 coins"})
		return
	}

	var worker models.User
	if err := c.DB.Where("email = ?", email).First(&worker).Error; err != nil {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}

	wd := models.Withdrawal{
		WorkerEmail:      worker.Email,
		WorkerName:       worker.Name,
		WithdrawalCoin:   req.WithdrawalCoin,
		WithdrawalAmount: float64(req.WithdrawalCoin) / CoinsPerDollar,
		PaymentSystem:    req.PaymentSystem,
		AccountNumber:    req.AccountNumber,
	}
	if err := c.Engine.RequestWithdrawal(r.Context(), &wd); err != nil {
		utils.WriteLedgerError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Withdrawal requested", Data: wd})
}

// ForWorker lists a worker's withdrawal history, newest first.
func (c *WithdrawalController) ForWorker(w http.ResponseWriter, r *http.Request) {
	email, ok := pathEmail(r)
	if !ok {
		writeForbidden(w)
		return
	}
	wds, err := c.Engine.WithdrawalsByWorker(r.Context(), email)
	if err != nil {
		utils.WriteLedgerError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "OK", Data: wds})
}

// Pending lists the admin approval queue, oldest first.
func (c *WithdrawalController) Pending(w http.ResponseWriter, r *http.Request) {
	wds, err := c.Engine.PendingWithdrawals(r.Context())
	if err != nil {
		utils.WriteLedgerError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "OK", Data: wds})
}

// Approve debits the worker and marks the request paid. The balance is
// re-checked at this point; a short worker is reported without state change.
func (c *WithdrawalController) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid withdrawal id"})
		return
	}
	if err := c.Engine.ApproveWithdrawal(r.Context(), uint(id)); err != nil {
		utils.WriteLedgerError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Withdrawal approved"})
}
