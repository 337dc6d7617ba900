package farmers

import (
	"embed"

	"github.com/oneacrefund/fieldops-console/modules/farmers/domain"
	"github.com/oneacrefund/fieldops-console/modules/farmers/presentation/controllers"
	"github.com/oneacrefund/fieldops-console/modules/farmers/services"
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
	return "farmers"
}

func (m *Module) Register(app application.Application) error {
	logger := configuration.Use().Logger()
	app.RegisterLocaleFiles(&LocaleFiles)
	app.RegisterServices(
		services.NewFarmerService(app.API(), app.EventPublisher(), logger),
		services.NewDuplicateService(app.API(), app.EventPublisher(), logger),
	)
	app.RegisterControllers(
		controllers.NewFarmersController(app),
		controllers.NewDuplicatesController(app),
	)
	app.RegisterNavItems(NavItems...)

	hub := app.Hub()
	app.EventPublisher().Subscribe(func(event *domain.CreatedEvent) {
		hub.Broadcast(application.RefreshEvent{Resource: "farmers", Action: "created", ID: event.Result.ID})
	})
	app.EventPublisher().Subscribe(func(event *domain.UpdatedEvent) {
		hub.Broadcast(application.RefreshEvent{Resource: "farmers", Action: "updated", ID: event.Result.ID})
	})
	app.EventPublisher().Subscribe(func(event *domain.DeletedEvent) {
		hub.Broadcast(application.RefreshEvent{Resource: "farmers", Action: "deleted", ID: event.ID})
	})
	app.EventPublisher().Subscribe(func(event *domain.DuplicateResolvedEvent) {
		hub.Broadcast(application.RefreshEvent{Resource: "duplicates", Action: "resolved", ID: event.DiscardedID})
	})
	return nil
}
