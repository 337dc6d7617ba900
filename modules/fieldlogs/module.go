package fieldlogs

import (
	"embed"

	"github.com/oneacrefund/fieldops-console/modules/fieldlogs/domain"
	"github.com/oneacrefund/fieldops-console/modules/fieldlogs/presentation/controllers"
	"github.com/oneacrefund/fieldops-console/modules/fieldlogs/services"
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
	return "fieldlogs"
}

func (m *Module) Register(app application.Application) error {
	logger := configuration.Use().Logger()
	app.RegisterLocaleFiles(&LocaleFiles)
	app.RegisterServices(
		services.NewFieldLogService(app.API(), app.EventPublisher(), logger),
	)
	app.RegisterControllers(
		controllers.NewFieldLogsController(app),
	)
	app.RegisterNavItems(NavItems...)

	hub := app.Hub()
	app.EventPublisher().Subscribe(func(event *domain.RemovedFromViewEvent) {
		hub.Broadcast(application.RefreshEvent{Resource: "fieldlogs", Action: "hidden"})
	})
	return nil
}
