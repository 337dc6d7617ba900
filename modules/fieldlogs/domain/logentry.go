package domain

import (
	"time"

	"github.com/oneacrefund/fieldops-console/pkg/collection"
	"github.com/oneacrefund/fieldops-console/pkg/mapping"
)

// LogEntryRecord mirrors the upstream wire shape of one activity log line.
type LogEntryRecord struct {
	ID           string     `json:"id"`
	Category     string     `json:"category"`
	Message      string     `json:"message"`
	ActorName    string     `json:"actor_name"`
	DeviceSerial string     `json:"device_serial"`
	SiteName     string     `json:"site_name"`
	CreatedAt    *time.Time `json:"created_at"`
}

type LogEntry struct {
	ID           string
	Category     string
	Message      string
	ActorName    string
	DeviceSerial string
	SiteName     string
	CreatedAt    time.Time
}

func MapLogEntry(r LogEntryRecord) LogEntry {
	entry := LogEntry{
		ID:           r.ID,
		Category:     mapping.Or(r.Category, "general"),
		Message:      r.Message,
		ActorName:    mapping.Or(r.ActorName, collection.Sentinel),
		DeviceSerial: mapping.Or(r.DeviceSerial, collection.Sentinel),
		SiteName:     mapping.Or(r.SiteName, collection.Sentinel),
	}
	if r.CreatedAt != nil {
		entry.CreatedAt = *r.CreatedAt
	}
	return entry
}
