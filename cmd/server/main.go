package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"runtime/debug"

	"github.com/oneacrefund/fieldops-console/internal/apiclient"
	"github.com/oneacrefund/fieldops-console/internal/server"
	"github.com/oneacrefund/fieldops-console/modules"
	"github.com/oneacrefund/fieldops-console/pkg/application"
	"github.com/oneacrefund/fieldops-console/pkg/configuration"
	"github.com/oneacrefund/fieldops-console/pkg/eventbus"
	"github.com/oneacrefund/fieldops-console/pkg/logging"
	"github.com/oneacrefund/fieldops-console/pkg/metrics"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			configuration.Use().Unload()
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	conf := configuration.Use()
	logger := conf.Logger()

	var tracingCleanup func()
	if conf.OpenTelemetry.Enabled {
		tracingCleanup = logging.SetupTracing(
			context.Background(),
			conf.OpenTelemetry.ServiceName,
			conf.OpenTelemetry.TempoURL,
		)
		defer tracingCleanup()
		logger.Info("OpenTelemetry tracing enabled, exporting to Tempo at " + conf.OpenTelemetry.TempoURL)
	}

	exchanger := apiclient.NewTokenExchanger(apiclient.TokenExchangerOptions{
		ExchangeURL:   conf.Auth.TokenExchangeURL,
		ClientID:      conf.Auth.ClientID,
		ClientSecret:  conf.Auth.ClientSecret,
		RefreshLeeway: conf.Auth.RefreshLeeway,
		Logger:        logger,
	})
	api := apiclient.New(apiclient.Options{
		BaseURL:     conf.Upstream.BaseURL,
		Timeout:     conf.Upstream.RequestTimeout,
		Credentials: exchanger,
		Logger:      logger,
	})

	bundle := application.LoadBundle()
	app := application.New(&application.ApplicationOptions{
		API:      api,
		EventBus: eventbus.NewEventPublisher(logger),
		Bundle:   bundle,
		Hub: application.NewHub(&application.HubOptions{
			Logger: logger,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		}),
		SupportedLanguages: conf.SupportedLanguages,
	})
	if err := modules.Load(app, modules.BuiltInModules...); err != nil {
		log.Fatalf("failed to load modules: %v", err)
	}

	app.RegisterControllers(
		server.NewHealthController(api),
		server.NewWebSocketController(app),
	)
	if conf.Prometheus.Enabled {
		app.RegisterControllers(metrics.NewPrometheusController(conf.Prometheus.Path))
	}

	options := &server.DefaultOptions{
		Logger:        logger,
		Configuration: conf,
		Application:   app,
	}
	serverInstance, err := server.Default(options)
	if err != nil {
		log.Fatalf("failed to create server: %v", err)
	}
	log.Printf("Listening on: %s\n", conf.Origin)
	if err := serverInstance.Start(conf.SocketAddress); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
