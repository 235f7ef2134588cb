package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/dreamwise/dreamwise/internal/ctxkeys"
	"github.com/dreamwise/dreamwise/internal/model"
)

type TokenVerifier interface {
	VerifyJWT(token string) (string, error)
}

type AccountLoader interface {
	ByID(ctx context.Context, id string) (*model.Account, error)
	TouchLastActive(ctx context.Context, id string)
}

// Authenticate resolves a bearer token to an active account and stores it in
// the request context. Requests without a usable token continue anonymously;
// RequireAuth decides whether that is allowed.
func Authenticate(tokens TokenVerifier, accounts AccountLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			accountID, err := tokens.VerifyJWT(token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			account, err := accounts.ByID(r.Context(), accountID)
			if err != nil || !account.IsActive {
				next.ServeHTTP(w, r)
				return
			}

			// The hash never travels further than this.
			account.PasswordHash = ""

			go accounts.TouchLastActive(context.WithoutCancel(r.Context()), account.ID)

			ctx := ctxkeys.WithAccount(r.Context(), account)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects requests without an authenticated account.
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctxkeys.Account(r.Context()) == nil {
			w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
