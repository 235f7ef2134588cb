package routes

import (
	"net/http"

	"github.com/dreamwise/dreamwise/internal/app"
	"github.com/dreamwise/dreamwise/internal/handler"
	"github.com/dreamwise/dreamwise/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	auth := handler.NewAuthHandler(app.AuthService, app.AvatarService)
	account := handler.NewAccountHandler(app.AuthService, app.AccountService, app.AvatarService)
	users := handler.NewUserHandler(app.AccountService, app.AvatarService)
	health := handler.NewHealthHandler(app.DB)

	rateLimit := middleware.RateLimit(app.AuthRateLimiter)
	requireAuth := middleware.RequireAuth

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	mux.HandleFunc("GET /healthz", health.Check)

	// Auth (rate limited)
	mux.HandleFunc("POST /api/auth/register/code", rateLimit(auth.RequestRegistrationCode))
	mux.HandleFunc("POST /api/auth/register", rateLimit(auth.Register))
	mux.HandleFunc("POST /api/auth/login", rateLimit(auth.Login))
	mux.HandleFunc("POST /api/auth/password-reset/code", rateLimit(auth.RequestPasswordReset))
	mux.HandleFunc("POST /api/auth/password-reset", rateLimit(auth.ResetPassword))

	// Public profiles
	mux.HandleFunc("GET /api/users/{username}", users.Show)

	// ============================================================================
	// AUTHENTICATED ROUTES
	// ============================================================================

	mux.HandleFunc("GET /api/account", requireAuth(account.Get))
	mux.HandleFunc("PATCH /api/account/profile", requireAuth(account.UpdateProfile))
	mux.HandleFunc("PATCH /api/account/preferences", requireAuth(account.UpdatePreferences))
	mux.HandleFunc("POST /api/account/avatar", requireAuth(account.UploadAvatar))
	mux.HandleFunc("POST /api/account/password/code", requireAuth(rateLimit(account.RequestPasswordChange)))
	mux.HandleFunc("POST /api/account/password", requireAuth(rateLimit(account.ChangePassword)))
	mux.HandleFunc("DELETE /api/account", requireAuth(account.Delete))

	return middleware.Chain(mux,
		middleware.RequestLogging,
		middleware.Recover,
		middleware.Authenticate(app.AuthService, app.AccountService),
	)
}
