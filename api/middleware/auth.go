package middleware

import (
	"net/http"
	"strings"

	"github.com/mangohub/mangostore-backend/api/responses"
	pkgauth "github.com/mangohub/mangostore-backend/pkg/auth"
	"github.com/mangohub/mangostore-backend/pkg/config"
	pkgerrors "github.com/mangohub/mangostore-backend/pkg/errors"
	"github.com/mangohub/mangostore-backend/pkg/logger"
)

const bearerPrefix = "Bearer "

// Auth rejects requests without a valid access token and seeds the
// request context with the caller's identity.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, bearerPrefix) {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeUnauthorized, "missing bearer token"))
				return
			}

			token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
			claims, err := pkgauth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid access token"))
				return
			}

			ctx := WithUserID(r.Context(), claims.UserID, claims.Role)
			ctx = logg.WithFields(ctx, map[string]any{
				"user_id":    claims.UserID.String(),
				"actor_role": string(claims.Role),
			})

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
