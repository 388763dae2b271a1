package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/saifurrahmanctg/micro-earn-server/ledger"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// WriteLedgerError maps ledger sentinel errors onto HTTP statuses. Anything
// unrecognized becomes a generic 500 without leaking internals.
func WriteLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrInsufficientFunds):
		WriteJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "Not enough coins"})
	case errors.Is(err, ledger.ErrSlotUnderflow):
		WriteJSON(w, http.StatusBadRequest, APIResponse{Success: false, Message: "No worker slots remaining"})
	case errors.Is(err, ledger.ErrNotFound):
		WriteJSON(w, http.StatusNotFound, APIResponse{Success: false, Message: "Not found"})
	case errors.Is(err, ledger.ErrForbidden):
		WriteJSON(w, http.StatusForbidden, APIResponse{Success: false, Message: "Forbidden"})
	case errors.Is(err, ledger.ErrConflict):
		WriteJSON(w, http.StatusConflict, APIResponse{Success: false, Message: "Already processed"})
	default:
		WriteJSON(w, http.StatusInternalServerError, APIResponse{Success: false, Message: "Internal server error"})
	}
}

// GetStringValue returns the value of a nullable string pointer or empty string if nil
func GetStringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
