package handlers

import (
	"net/http"

	"github.com/citydev/fleetcheck/internal/middleware"
)

// NewRouter wires every endpoint onto a mux and wraps it with the shared
// middleware chain: rate limiting outermost, then JWT authentication with
// its skip list for the account-less wizard surface.
func NewRouter(
	inspections *InspectionHandler,
	records *RecordsHandler,
	authHandler *AuthHandler,
	authMW *middleware.AuthMiddleware,
	rateMW *middleware.RateLimitMiddleware,
) http.Handler {
	mux := http.NewServeMux()

	// Wizard sessions
	mux.HandleFunc("POST /api/inspections", inspections.Create)
	mux.HandleFunc("GET /api/inspections/{id}", inspections.Get)
	mux.HandleFunc("POST /api/inspections/{id}/signin", inspections.SignIn)
	mux.HandleFunc("POST /api/inspections/{id}/start-of-day", inspections.StartOfDay)
	mux.HandleFunc("POST /api/inspections/{id}/end-of-day", inspections.EndOfDay)
	mux.HandleFunc("POST /api/inspections/{id}/signature", inspections.Signature)
	mux.HandleFunc("POST /api/inspections/{id}/review", inspections.Review)
	mux.HandleFunc("POST /api/inspections/{id}/submit", inspections.Submit)
	mux.HandleFunc("POST /api/inspections/{id}/new", inspections.New)

	// Success-screen notification dispatch
	mux.HandleFunc("POST /api/inspections/{id}/notify/email", inspections.NotifyEmail)
	mux.HandleFunc("POST /api/inspections/{id}/notify/slack", inspections.NotifySlack)
	mux.HandleFunc("POST /api/inspections/{id}/notify/sheets", inspections.NotifySheets)

	// Reference data and history
	mux.HandleFunc("GET /api/vehicles", records.ListVehicles)
	mux.HandleFunc("GET /api/supervisors", records.ListSupervisors)
	mux.HandleFunc("GET /api/history", records.History)
	mux.Handle("POST /api/vehicles",
		authMW.RequirePermission("manage_vehicles")(http.HandlerFunc(records.CreateVehicle)))
	mux.Handle("POST /api/supervisors",
		authMW.RequirePermission("manage_supervisors")(http.HandlerFunc(records.CreateSupervisor)))

	// Admin accounts
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("GET /api/auth/profile", authHandler.GetProfile)
	mux.HandleFunc("PUT /api/auth/profile", authHandler.UpdateProfile)
	mux.HandleFunc("POST /api/auth/change-password", authHandler.ChangePassword)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	var handler http.Handler = mux
	handler = authMW.Authenticate(handler)
	handler = rateMW.RateLimit(300, 60)(handler)
	return handler
}
