package mappers

import (
	"time"

	"github.com/oneacrefund/fieldops-console/modules/fieldlogs/domain"
	"github.com/oneacrefund/fieldops-console/modules/fieldlogs/presentation/viewmodels"
	"github.com/oneacrefund/fieldops-console/pkg/collection"
)

func LogEntryToViewModel(e domain.LogEntry) viewmodels.LogEntry {
	createdAt := collection.Sentinel
	if !e.CreatedAt.IsZero() {
		createdAt = e.CreatedAt.Format(time.RFC3339)
	}
	return viewmodels.LogEntry{
		ID:           e.ID,
		Category:     e.Category,
		Message:      e.Message,
		ActorName:    e.ActorName,
		DeviceSerial: e.DeviceSerial,
		SiteName:     e.SiteName,
		CreatedAt:    createdAt,
	}
}
