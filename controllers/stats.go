package controllers

import (
	"net/http"

	"github.com/saifurrahmanctg/micro-earn-server/ledger"
	"github.com/saifurrahmanctg/micro-earn-server/utils"
)

type StatsController struct {
	Engine *ledger.Engine
}

func NewStatsController(engine *ledger.Engine) *StatsController {
	return &StatsController{Engine: engine}
}

// Buyer reports task count, pending worker slots and total coins paid out.
func (c *StatsController) Buyer(w http.ResponseWriter, r *http.Request) {
	email, ok := pathEmail(r)
	if !ok {
		writeForbidden(w)
		return
	}
	stats, err := c.Engine.BuyerStats(r.Context(), email)
	if err != nil {
		utils.WriteLedgerError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "OK", Data: stats})
}

// Worker reports submission counts and total earnings.
func (c *StatsController) Worker(w http.ResponseWriter, r *http.Request) {
	email, ok := pathEmail(r)
	if !ok {
		writeForbidden(w)
		return
	}
	stats, err := c.Engine.WorkerStats(r.Context(), email)
	if err != nil {
		utils.WriteLedgerError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "OK", Data: stats})
}

// Admin reports platform-wide totals.
func (c *StatsController) Admin(w http.ResponseWriter, r *http.Request) {
	stats, err := c.Engine.AdminStats(r.Context())
	if err != nil {
		utils.WriteLedgerError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "OK", Data: stats})
}

// BestWorkers is the public leaderboard of the six richest workers.
func (c *StatsController) BestWorkers(w http.ResponseWriter, r *http.Request) {
	workers, err := c.Engine.BestWorkers(r.Context())
	if err != nil {
		utils.WriteLedgerError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "OK", Data: workers})
}
