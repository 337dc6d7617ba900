package mappers

import (
	"time"

	"github.com/oneacrefund/fieldops-console/modules/locations/domain"
	"github.com/oneacrefund/fieldops-console/modules/locations/presentation/viewmodels"
	"github.com/oneacrefund/fieldops-console/pkg/collection"
)

// SiteToViewModel marks the row matching the working site id.
func SiteToViewModel(currentSiteID string) func(domain.Site) viewmodels.Site {
	return func(s domain.Site) viewmodels.Site {
		createdAt := collection.Sentinel
		if !s.CreatedAt.IsZero() {
			createdAt = s.CreatedAt.Format(time.DateOnly)
		}
		return viewmodels.Site{
			ID:        s.ID,
			Name:      s.Name,
			Region:    s.Region,
			Current:   s.ID == currentSiteID,
			CreatedAt: createdAt,
		}
	}
}

func DistrictToViewModel(d domain.District) viewmodels.District {
	return viewmodels.District{ID: d.ID, Name: d.Name}
}

func PodToViewModel(p domain.Pod) viewmodels.Pod {
	return viewmodels.Pod{ID: p.ID, Name: p.Name, District: p.DistrictName}
}

func GroupToViewModel(g domain.Group) viewmodels.Group {
	return viewmodels.Group{ID: g.ID, Name: g.Name, Pod: g.PodName, MemberCount: g.MemberCount}
}
