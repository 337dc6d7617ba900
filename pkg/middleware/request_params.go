package middleware

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/oneacrefund/fieldops-console/pkg/composables"
	"github.com/oneacrefund/fieldops-console/pkg/configuration"
)

// RequestParams captures the per-request basics the composables expose.
func RequestParams() mux.MiddlewareFunc {
	conf := configuration.Use()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				params := &composables.Params{
					Request:   r,
					Writer:    w,
					IP:        clientIP(r, conf),
					UserAgent: r.UserAgent(),
				}
				if _, ok := composables.UseSession(r.Context()); ok {
					params.Authenticated = true
				}
				ctx := composables.WithParams(r.Context(), params)
				next.ServeHTTP(w, r.WithContext(ctx))
			},
		)
	}
}
