package routes

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/saifurrahmanctg/micro-earn-server/config"
	"github.com/saifurrahmanctg/micro-earn-server/controllers"
	"github.com/saifurrahmanctg/micro-earn-server/ledger"
	"github.com/saifurrahmanctg/micro-earn-server/middleware"
	"github.com/saifurrahmanctg/micro-earn-server/utils"
)

func optionsHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// InitRouter wires the full HTTP surface. Route groups:
//   - public: health, login, register, role lookup, leaderboard
//   - authenticated: profile, notifications, uploads
//   - role-gated: buyer, worker and admin dashboards
func InitRouter(db *gorm.DB, engine *ledger.Engine, uploader *utils.S3Uploader, cfg *config.Config) *mux.Router {
	r := mux.NewRouter()

	r.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "micro-earn server is running"})
	})).Methods(http.MethodGet)

	r.Handle("/health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
			"service":   "micro-earn-api",
		})
	})).Methods(http.MethodGet)

	var origins []string
	for _, p := range strings.Split(cfg.CORS.AllowedOrigins, ",") {
		if o := strings.TrimSpace(p); o != "" {
			origins = append(origins, o)
		}
	}
	r.Use(func(next http.Handler) http.Handler {
		return handlers.CORS(
			handlers.AllowedOrigins(origins),
			handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"}),
			handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Requested-With", "X-Request-ID"}),
			handlers.AllowCredentials(),
		)(next)
	})
	r.PathPrefix("/").HandlerFunc(optionsHandler).Methods(http.MethodOptions)

	guard := middleware.NewRoleGuard(db)
	authCtrl := controllers.NewAuthController(db)
	userCtrl := controllers.NewUserController(db)
	taskCtrl := controllers.NewTaskController(db, engine)
	subCtrl := controllers.NewSubmissionController(db, engine)
	wdCtrl := controllers.NewWithdrawalController(db, engine)
	payCtrl := controllers.NewPaymentController(db, engine, utils.NewStripeClient(cfg.Stripe.SecretKey), cfg.Stripe.Currency)
	statsCtrl := controllers.NewStatsController(engine)
	notifCtrl := controllers.NewNotificationController(engine)
	reportCtrl := controllers.NewReportController(db)
	uploadCtrl := controllers.NewUploadController(uploader)

	// Login endpoints get a tighter per-IP limit than the rest of the API.
	loginLimiter := middleware.NewIPRateLimiter(20, time.Minute, cfg.Server.TrustedProxies)

	// public
	r.Handle("/jwt", loginLimiter.Middleware(http.HandlerFunc(authCtrl.Login))).Methods(http.MethodPost)
	r.Handle("/users", loginLimiter.Middleware(http.HandlerFunc(authCtrl.Register))).Methods(http.MethodPost)
	r.Handle("/users/role/{email}", http.HandlerFunc(userCtrl.GetRole)).Methods(http.MethodGet)
	r.Handle("/best-workers", http.HandlerFunc(statsCtrl.BestWorkers)).Methods(http.MethodGet)

	// authenticated
	auth := r.NewRoute().Subrouter()
	auth.Use(middleware.AuthMiddleware)
	auth.Handle("/logout", http.HandlerFunc(authCtrl.Logout)).Methods(http.MethodPost)
	auth.Handle("/users/login-update", http.HandlerFunc(authCtrl.TouchLogin)).Methods(http.MethodPatch)
	auth.Handle("/users/{email}", http.HandlerFunc(userCtrl.GetByEmail)).Methods(http.MethodGet)
	auth.Handle("/tasks", http.HandlerFunc(taskCtrl.Open)).Methods(http.MethodGet)
	auth.Handle("/tasks/{id:[0-9]+}", http.HandlerFunc(taskCtrl.Get)).Methods(http.MethodGet)
	auth.Handle("/notifications/{email}", http.HandlerFunc(notifCtrl.List)).Methods(http.MethodGet)
	auth.Handle("/notifications/read/{id:[0-9]+}", http.HandlerFunc(notifCtrl.MarkRead)).Methods(http.MethodPatch)
	auth.Handle("/uploads", http.HandlerFunc(uploadCtrl.Image)).Methods(http.MethodPost)
	auth.Handle("/reports", http.HandlerFunc(reportCtrl.Create)).Methods(http.MethodPost)
	auth.Handle("/create-payment-intent", http.HandlerFunc(payCtrl.CreateIntent)).Methods(http.MethodPost)

	// buyer
	buyer := auth.NewRoute().Subrouter()
	buyer.Use(guard.RequireBuyer)
	buyer.Handle("/tasks", http.HandlerFunc(taskCtrl.Create)).Methods(http.MethodPost)
	buyer.Handle("/tasks/buyer/{email}", http.HandlerFunc(taskCtrl.ByBuyer)).Methods(http.MethodGet)
	buyer.Handle("/tasks/{id:[0-9]+}", http.HandlerFunc(taskCtrl.Update)).Methods(http.MethodPatch)
	buyer.Handle("/submissions/buyer/{email}", http.HandlerFunc(subCtrl.PendingForBuyer)).Methods(http.MethodGet)
	buyer.Handle("/submissions/approve/{id:[0-9]+}", http.HandlerFunc(subCtrl.Approve)).Methods(http.MethodPatch)
	buyer.Handle("/submissions/reject/{id:[0-9]+}", http.HandlerFunc(subCtrl.Reject)).Methods(http.MethodPatch)
	buyer.Handle("/payments", http.HandlerFunc(payCtrl.Record)).Methods(http.MethodPost)
	buyer.Handle("/payments/{email}", http.HandlerFunc(payCtrl.History)).Methods(http.MethodGet)
	buyer.Handle("/buyer-stats/{email}", http.HandlerFunc(statsCtrl.Buyer)).Methods(http.MethodGet)

	// worker
	worker := auth.NewRoute().Subrouter()
	worker.Use(guard.RequireWorker)
	worker.Handle("/submissions", http.HandlerFunc(subCtrl.Create)).Methods(http.MethodPost)
	worker.Handle("/submissions/worker/{email}", http.HandlerFunc(subCtrl.ForWorker)).Methods(http.MethodGet)
	worker.Handle("/withdrawals", http.HandlerFunc(wdCtrl.Request)).Methods(http.MethodPost)
	worker.Handle("/withdrawals/worker/{email}", http.HandlerFunc(wdCtrl.ForWorker)).Methods(http.MethodGet)
	worker.Handle("/worker-stats/{email}", http.HandlerFunc(statsCtrl.Worker)).Methods(http.MethodGet)

	// delete is owner-or-admin; the engine checks ownership, so it only needs
	// authentication here
	auth.Handle("/tasks/{id:[0-9]+}", http.HandlerFunc(taskCtrl.Delete)).Methods(http.MethodDelete)

	// admin
	admin := auth.NewRoute().Subrouter()
	admin.Use(guard.RequireAdmin)
	admin.Handle("/users", http.HandlerFunc(userCtrl.List)).Methods(http.MethodGet)
	admin.Handle("/users/role/{id:[0-9]+}", http.HandlerFunc(userCtrl.UpdateRole)).Methods(http.MethodPatch)
	admin.Handle("/users/{id:[0-9]+}", http.HandlerFunc(userCtrl.Delete)).Methods(http.MethodDelete)
	admin.Handle("/tasks/admin", http.HandlerFunc(taskCtrl.All)).Methods(http.MethodGet)
	admin.Handle("/withdrawals", http.HandlerFunc(wdCtrl.Pending)).Methods(http.MethodGet)
	admin.Handle("/withdrawals/approve/{id:[0-9]+}", http.HandlerFunc(wdCtrl.Approve)).Methods(http.MethodPatch)
	admin.Handle("/admin-stats", http.HandlerFunc(statsCtrl.Admin)).Methods(http.MethodGet)
	admin.Handle("/reports", http.HandlerFunc(reportCtrl.List)).Methods(http.MethodGet)
	admin.Handle("/reports/{id:[0-9]+}", http.HandlerFunc(reportCtrl.Delete)).Methods(http.MethodDelete)

	return r
}
