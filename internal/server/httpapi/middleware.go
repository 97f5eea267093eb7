package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/calcpay/server/internal/server/auth"
)

type ctxKey string

const (
	accountIDKey    ctxKey = "accountID"
	accountEmailKey ctxKey = "accountEmail"
)

// authenticate requires a "Bearer <token>" Authorization header. A missing
// token yields 401; a token that fails validation yields 403.
func (s *HTTPServer) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		header := r.Header.Get("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			writeMessage(w, http.StatusUnauthorized, "missing token")
			return
		}

		accountID, email, err := auth.ParseToken(token, s.jwtSecret)
		if err != nil {
			writeMessage(w, http.StatusForbidden, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), accountIDKey, accountID)
		ctx = context.WithValue(ctx, accountEmailKey, email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func accountIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(accountIDKey).(string)
	return id
}

func accountEmailFromContext(ctx context.Context) string {
	email, _ := ctx.Value(accountEmailKey).(string)
	return email
}
