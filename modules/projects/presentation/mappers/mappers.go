package mappers

import (
	"time"

	"github.com/oneacrefund/fieldops-console/modules/projects/domain"
	"github.com/oneacrefund/fieldops-console/modules/projects/presentation/viewmodels"
	"github.com/oneacrefund/fieldops-console/pkg/collection"
)

func ProjectToViewModel(p domain.Project) viewmodels.Project {
	budget := collection.Sentinel
	if p.Budget != nil {
		budget = p.Budget.Display()
	}
	return viewmodels.Project{
		ID:        p.ID,
		Name:      p.Name,
		Code:      p.Code,
		Status:    p.Status,
		Site:      p.SiteName,
		Budget:    budget,
		StartDate: formatDate(p.StartDate),
		EndDate:   formatDate(p.EndDate),
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return collection.Sentinel
	}
	return t.Format(time.DateOnly)
}
