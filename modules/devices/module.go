package devices

import (
	"embed"

	"github.com/oneacrefund/fieldops-console/modules/devices/domain"
	"github.com/oneacrefund/fieldops-console/modules/devices/presentation/controllers"
	"github.com/oneacrefund/fieldops-console/modules/devices/services"
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
	return "devices"
}

func (m *Module) Register(app application.Application) error {
	logger := configuration.Use().Logger()
	app.RegisterLocaleFiles(&LocaleFiles)
	app.RegisterServices(
		services.NewDeviceService(app.API(), app.EventPublisher(), logger),
	)
	app.RegisterControllers(
		controllers.NewDevicesController(app),
	)
	app.RegisterNavItems(NavItems...)

	hub := app.Hub()
	app.EventPublisher().Subscribe(func(event *domain.CreatedEvent) {
		hub.Broadcast(application.RefreshEvent{Resource: "devices", Action: "created", ID: event.Result.ID})
	})
	app.EventPublisher().Subscribe(func(event *domain.UpdatedEvent) {
		hub.Broadcast(application.RefreshEvent{Resource: "devices", Action: "updated", ID: event.Result.ID})
	})
	app.EventPublisher().Subscribe(func(event *domain.DeletedEvent) {
		hub.Broadcast(application.RefreshEvent{Resource: "devices", Action: "deleted", ID: event.ID})
	})
	app.EventPublisher().Subscribe(func(event *domain.StatusChangedEvent) {
		hub.Broadcast(application.RefreshEvent{Resource: "devices", Action: event.Status, ID: event.ID})
	})
	return nil
}
