package projects

import (
	"embed"

	"github.com/oneacrefund/fieldops-console/modules/projects/domain"
	"github.com/oneacrefund/fieldops-console/modules/projects/presentation/controllers"
	"github.com/oneacrefund/fieldops-console/modules/projects/services"
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
	return "projects"
}

func (m *Module) Register(app application.Application) error {
	logger := configuration.Use().Logger()
	app.RegisterLocaleFiles(&LocaleFiles)
	app.RegisterServices(
		services.NewProjectService(app.API(), app.EventPublisher(), logger),
	)
	app.RegisterControllers(
		controllers.NewProjectsController(app),
	)
	app.RegisterNavItems(NavItems...)

	hub := app.Hub()
	app.EventPublisher().Subscribe(func(event *domain.CreatedEvent) {
		hub.Broadcast(application.RefreshEvent{Resource: "projects", Action: "created", ID: event.Result.ID})
	})
	app.EventPublisher().Subscribe(func(event *domain.UpdatedEvent) {
		hub.Broadcast(application.RefreshEvent{Resource: "projects", Action: "updated", ID: event.Result.ID})
	})
	app.EventPublisher().Subscribe(func(event *domain.DeletedEvent) {
		hub.Broadcast(application.RefreshEvent{Resource: "projects", Action: "deleted", ID: event.ID})
	})
	app.EventPublisher().Subscribe(func(event *domain.StatusChangedEvent) {
		hub.Broadcast(application.RefreshEvent{Resource: "projects", Action: event.Status, ID: event.ID})
	})
	return nil
}
