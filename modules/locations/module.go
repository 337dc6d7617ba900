package locations

import (
	"embed"

	"github.com/oneacrefund/fieldops-console/modules/locations/domain"
	"github.com/oneacrefund/fieldops-console/modules/locations/presentation/controllers"
	"github.com/oneacrefund/fieldops-console/modules/locations/services"
	"github.com/oneacrefund/fieldops-console/pkg/application"
	"github.com/oneacrefund/fieldops-console/pkg/configuration"
)

//go:embed presentation/locales/*.json
var LocaleFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Name() string {
	return "locations"
}

func (m *Module) Register(app application.Application) error {
	logger := configuration.Use().Logger()
	app.RegisterLocaleFiles(&LocaleFiles)
	app.RegisterServices(
		services.NewLocationService(app.API(), app.EventPublisher(), logger),
	)
	app.RegisterControllers(
		controllers.NewLocationsController(app),
	)
	app.RegisterNavItems(NavItems...)

	hub := app.Hub()
	app.EventPublisher().Subscribe(func(event *domain.SiteSelectedEvent) {
		hub.Broadcast(application.RefreshEvent{Resource: "locations", Action: "site-selected", ID: event.SiteID})
	})
	app.EventPublisher().Subscribe(func(event *domain.SiteCreatedEvent) {
		hub.Broadcast(application.RefreshEvent{Resource: "locations", Action: "created", ID: event.Result.ID})
	})
	app.EventPublisher().Subscribe(func(event *domain.SiteDeletedEvent) {
		hub.Broadcast(application.RefreshEvent{Resource: "locations", Action: "deleted", ID: event.ID})
	})
	app.EventPublisher().Subscribe(func(event *domain.GroupCreatedEvent) {
		hub.Broadcast(application.RefreshEvent{Resource: "groups", Action: "created", ID: event.Result.ID})
	})
	app.EventPublisher().Subscribe(func(event *domain.GroupDeletedEvent) {
		hub.Broadcast(application.RefreshEvent{Resource: "groups", Action: "deleted", ID: event.ID})
	})
	return nil
}
