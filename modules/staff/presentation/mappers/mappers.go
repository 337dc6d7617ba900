package mappers

import (
	"time"

	"github.com/oneacrefund/fieldops-console/modules/staff/domain"
	"github.com/oneacrefund/fieldops-console/modules/staff/presentation/viewmodels"
	"github.com/oneacrefund/fieldops-console/pkg/collection"
)

func StaffToViewModel(s domain.Staff) viewmodels.Staff {
	createdAt := collection.Sentinel
	if !s.CreatedAt.IsZero() {
		createdAt = s.CreatedAt.Format(time.DateOnly)
	}
	return viewmodels.Staff{
		ID:        s.ID,
		FullName:  s.FullName(),
		Role:      s.Role,
		Phone:     s.Phone,
		Email:     s.Email,
		Status:    s.Status,
		Site:      s.SiteName,
		CreatedAt: createdAt,
	}
}
