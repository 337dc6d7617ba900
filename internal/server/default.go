package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"

	"github.com/oneacrefund/fieldops-console/pkg/application"
	"github.com/oneacrefund/fieldops-console/pkg/configuration"
	"github.com/oneacrefund/fieldops-console/pkg/constants"
	"github.com/oneacrefund/fieldops-console/pkg/httpapi"
	"github.com/oneacrefund/fieldops-console/pkg/middleware"
	"github.com/oneacrefund/fieldops-console/pkg/server"
)

type DefaultOptions struct {
	Logger        *logrus.Logger
	Configuration *configuration.Configuration
	Application   application.Application
}

func Default(options *DefaultOptions) (*server.HTTPServer, error) {
	app := options.Application
	conf := options.Configuration

	middlewares := []mux.MiddlewareFunc{
		middleware.WithLogger(options.Logger, middleware.DefaultLoggerOptions()),

		middleware.TracedMiddleware("application"),
		middleware.Provide(constants.AppKey, app),

		middleware.TracedMiddleware("cors"),
		middleware.Cors(conf.CorsOrigins()...),

		middleware.TracedMiddleware("opsGuard"),
		middleware.OpsGuard(conf),
	}

	if conf.RateLimit.Enabled {
		var store limiter.Store
		var err error

		switch conf.RateLimit.Storage {
		case "redis":
			store, err = middleware.NewRedisStore(conf.RateLimit.RedisURL)
			if err != nil {
				options.Logger.WithError(err).Warn("Failed to create Redis store for rate limiting, falling back to memory")
				store = middleware.NewMemoryStore()
			}
		default:
			store = middleware.NewMemoryStore()
		}

		middlewares = append(middlewares,
			middleware.TracedMiddleware("rateLimit"),
			middleware.RateLimit(middleware.RateLimitConfig{
				RequestsPerPeriod: conf.RateLimit.GlobalRPS,
				Store:             store,
			}),
		)
	}

	middlewares = append(middlewares,
		middleware.TracedMiddleware("authorize"),
		middleware.Authorize(),
		middleware.TracedMiddleware("requestParams"),
		middleware.RequestParams(),
		middleware.TracedMiddleware("localizer"),
		middleware.ProvideLocalizer(app),
	)

	app.RegisterMiddleware(middlewares...)

	serverInstance := server.NewHTTPServer(
		app,
		notFound(),
		methodNotAllowed(),
	)
	return serverInstance, nil
}

func notFound() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = httpapi.WriteError(w, http.StatusNotFound, "NOT_FOUND", "resource not found", map[string]string{
			"path": r.URL.Path,
		})
	})
}

func methodNotAllowed() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = httpapi.WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", map[string]string{
			"path":   r.URL.Path,
			"method": r.Method,
		})
	})
}
