package auth

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey string

const capabilityKey ctxKey = "capability"

// PasswordHeader carries the shared secret for clients that do not hold a session token.
const PasswordHeader = "X-Wall-Password"

func FromContext(ctx context.Context) Capability {
	c, _ := ctx.Value(capabilityKey).(Capability)
	return c
}

func WithCapability(ctx context.Context, c Capability) context.Context {
	return context.WithValue(ctx, capabilityKey, c)
}

// Resolve attaches the request's capability to its context. It never rejects:
// operations decide for themselves whether they need the credential.
func Resolve(gate *Gate, jwtSvc *JWT) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var c Capability

			if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") && jwtSvc.Enabled() {
				if vc, err := jwtSvc.Verify(strings.TrimPrefix(h, "Bearer ")); err == nil {
					c = vc
				}
			}
			if pw := r.Header.Get(PasswordHeader); pw != "" {
				c = c.Or(gate.Check(pw))
			}

			next.ServeHTTP(w, r.WithContext(WithCapability(r.Context(), c)))
		})
	}
}
