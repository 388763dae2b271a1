package controllers

import (
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/saifurrahmanctg/micro-earn-server/ledger"
	"github.com/saifurrahmanctg/micro-earn-server/middleware"
	"github.com/saifurrahmanctg/micro-earn-server/models"
	"github.com/saifurrahmanctg/micro-earn-server/utils"
)

type PaymentController struct {
	DB       *gorm.DB
	Engine   *ledger.Engine
	Stripe   *utils.StripeClient
	Currency string
}

func NewPaymentController(db *gorm.DB, engine *ledger.Engine, stripe *utils.StripeClient, currency string) *PaymentController {
	return &PaymentController{DB: db, Engine: engine, Stripe: stripe, Currency: currency}
}

type paymentIntentRequest struct {
	Price float64 `json:"price" validate:"required"`
}

// CreateIntent opens a card PaymentIntent for the given dollar price and
// returns its client_secret for the frontend checkout flow.
func (c *PaymentController) CreateIntent(w http.ResponseWriter, r *http.Request) {
	var req paymentIntentRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	amountCents := int64(req.Price * 100)
	intent, err := c.Stripe.CreatePaymentIntent(r.Context(), amountCents, c.Currency)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadGateway, utils.APIResponse{Success: false, Message: "Payment provider unavailable"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "OK",
		Data:    map[string]string{"client_secret": intent.ClientSecret},
	})
}

type recordPaymentRequest struct {
	CoinsPurchased int64   `json:"coins_purchased" validate:"required"`
	Price          float64 `json:"price" validate:"required"`
	TransactionID  string  `json:"transaction_id" validate:"required"`
}

// Record stores a completed purchase and credits the coins. The transaction
// id is unique so a replayed confirmation cannot credit twice.
func (c *PaymentController) Record(w http.ResponseWriter, r *http.Request) {
	email, _ := utils.GetUserEmail(r)

	var req recordPaymentRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	payment := models.Payment{
		BuyerEmail:     email,
		CoinsPurchased: req.CoinsPurchased,
		Price:          req.Price,
		TransactionID:  req.TransactionID,
	}
	if err := c.Engine.RecordPayment(r.Context(), &payment); err != nil {
		if errors.Is(err, ledger.ErrConflict) {
			utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{Success: false, Message: "Payment already recorded"})
			return
		}
		utils.WriteLedgerError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.APIResponse{Success: true, Message: "Payment recorded", Data: payment})
}

// History lists a buyer's purchase history.
func (c *PaymentController) History(w http.ResponseWriter, r *http.Request) {
	email, ok := pathEmail(r)
	if !ok {
		writeForbidden(w)
		return
	}
	payments, err := c.Engine.PaymentsByBuyer(r.Context(), email)
	if err != nil {
		utils.WriteLedgerError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "OK", Data: payments})
}
