package middleware

import (
	"context"
	"net/http"
	"strings"

	"evalportal/internal/domain/auth"
	"evalportal/internal/requestctx"
)

type ctxKey string

const ctxKeyUser ctxKey = "user"

// Auth resolves a bearer token into the request user. Requests without a valid
// token pass through anonymous; RequirePermission turns them away.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
			if !found || !strings.EqualFold(scheme, "bearer") {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := auth.ParseToken(secret, strings.TrimSpace(token))
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithUser(r.Context(), auth.UserContext{
				EmployeeID:   claims.EmployeeID,
				Role:         claims.Role,
				DepartmentID: claims.DepartmentID,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithUser stores user and exposes its id as the audit actor.
func WithUser(ctx context.Context, user auth.UserContext) context.Context {
	ctx = context.WithValue(ctx, ctxKeyUser, user)
	return requestctx.WithActorID(ctx, user.EmployeeID)
}

func GetUser(ctx context.Context) (auth.UserContext, bool) {
	user, ok := ctx.Value(ctxKeyUser).(auth.UserContext)
	return user, ok
}
