package controllers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/saifurrahmanctg/micro-earn-server/ledger"
	"github.com/saifurrahmanctg/micro-earn-server/utils"
)

type NotificationController struct {
	Engine *ledger.Engine
}

func NewNotificationController(engine *ledger.Engine) *NotificationController {
	return &NotificationController{Engine: engine}
}

// List returns a user's notifications, newest first.
func (c *NotificationController) List(w http.ResponseWriter, r *http.Request) {
	email, ok := pathEmail(r)
	if !ok {
		writeForbidden(w)
		return
	}
	items, err := c.Engine.NotificationsFor(r.Context(), email)
	if err != nil {
		utils.WriteLedgerError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "OK", Data: items})
}

// MarkRead flags one of the caller's notifications as read.
func (c *NotificationController) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.APIResponse{Success: false, Message: "Invalid notification id"})
		return
	}
	email, _ := utils.GetUserEmail(r)
	if err := c.Engine.MarkNotificationRead(r.Context(), uint(id), email); err != nil {
		utils.WriteLedgerError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Notification read"})
}
