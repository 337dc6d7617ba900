package staff

import (
	"embed"

	"github.com/oneacrefund/fieldops-console/modules/staff/domain"
	"github.com/oneacrefund/fieldops-console/modules/staff/presentation/controllers"
	"github.com/oneacrefund/fieldops-console/modules/staff/services"
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
	return "staff"
}

func (m *Module) Register(app application.Application) error {
	logger := configuration.Use().Logger()
	app.RegisterLocaleFiles(&LocaleFiles)
	app.RegisterServices(
		services.NewStaffService(app.API(), app.EventPublisher(), logger),
	)
	app.RegisterControllers(
		controllers.NewStaffController(app),
	)
	app.RegisterNavItems(NavItems...)

	hub := app.Hub()
	app.EventPublisher().Subscribe(func(event *domain.CreatedEvent) {
		hub.Broadcast(application.RefreshEvent{Resource: "staff", Action: "created", ID: event.Result.ID})
	})
	app.EventPublisher().Subscribe(func(event *domain.UpdatedEvent) {
		hub.Broadcast(application.RefreshEvent{Resource: "staff", Action: "updated", ID: event.Result.ID})
	})
	app.EventPublisher().Subscribe(func(event *domain.DeletedEvent) {
		hub.Broadcast(application.RefreshEvent{Resource: "staff", Action: "deleted", ID: event.ID})
	})
	return nil
}
