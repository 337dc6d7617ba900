package modules

import (
	"slices"

	"github.com/oneacrefund/fieldops-console/modules/devices"
	"github.com/oneacrefund/fieldops-console/modules/farmers"
	"github.com/oneacrefund/fieldops-console/modules/fieldlogs"
	"github.com/oneacrefund/fieldops-console/modules/locations"
	"github.com/oneacrefund/fieldops-console/modules/projects"
	"github.com/oneacrefund/fieldops-console/modules/staff"
	"github.com/oneacrefund/fieldops-console/pkg/application"
)

var (
	BuiltInModules = []application.Module{
		farmers.NewModule(),
		staff.NewModule(),
		devices.NewModule(),
		projects.NewModule(),
		locations.NewModule(),
		fieldlogs.NewModule(),
	}

	NavLinks = slices.Concat(
		farmers.NavItems,
		staff.NavItems,
		devices.NavItems,
		projects.NavItems,
		locations.NavItems,
		fieldlogs.NavItems,
	)
)

func Load(app application.Application, externalModules ...application.Module) error {
	for _, module := range externalModules {
		if err := module.Register(app); err != nil {
			return err
		}
	}
	return nil
}
