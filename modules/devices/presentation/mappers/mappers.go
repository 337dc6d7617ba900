package mappers

import (
	"time"

	"github.com/oneacrefund/fieldops-console/modules/devices/domain"
	"github.com/oneacrefund/fieldops-console/modules/devices/presentation/viewmodels"
	"github.com/oneacrefund/fieldops-console/pkg/collection"
)

func DeviceToViewModel(d domain.Device) viewmodels.Device {
	createdAt := collection.Sentinel
	if !d.CreatedAt.IsZero() {
		createdAt = d.CreatedAt.Format(time.DateOnly)
	}
	return viewmodels.Device{
		ID:           d.ID,
		SerialNumber: d.SerialNumber,
		Model:        d.Model,
		IMEI:         d.IMEI,
		Status:       d.Status,
		AssignedTo:   d.AssignedTo,
		Site:         d.SiteName,
		CreatedAt:    createdAt,
	}
}
