// Package controllers holds the HTTP handlers. Controllers are constructed
// with their dependencies injected and do request decoding, identity checks
// and response shaping; all ledger semantics live in the ledger package.
package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/saifurrahmanctg/micro-earn-server/models"
	"github.com/saifurrahmanctg/micro-earn-server/utils"
)

// pathEmail returns the {email} path variable when the caller may act for
// it: either it is their own email or they are an admin.
func pathEmail(r *http.Request) (string, bool) {
	email := mux.Vars(r)["email"]
	caller, _ := utils.GetUserEmail(r)
	role, _ := utils.GetUserRole(r)
	if email != "" && (caller == email || role == models.RoleAdmin) {
		return email, true
	}
	return "", false
}

func writeForbidden(w http.ResponseWriter) {
	utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Forbidden"})
}
