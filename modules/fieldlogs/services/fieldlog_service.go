package services

import (
	"context"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/oneacrefund/fieldops-console/internal/apiclient"
	"github.com/oneacrefund/fieldops-console/modules/fieldlogs/domain"
	"github.com/oneacrefund/fieldops-console/pkg/collection"
	"github.com/oneacrefund/fieldops-console/pkg/eventbus"
)

const resource = "fieldlog"

// FieldLogService serves the read-only activity log. The upstream offers
// no delete endpoint for log entries, so RemoveFromView only trims the
// local working set and a reload restores the full collection.
type FieldLogService struct {
	api       *apiclient.Client
	publisher eventbus.EventBus
	loader    *collection.Loader[domain.LogEntryRecord, domain.LogEntry]
}

func NewFieldLogService(api *apiclient.Client, publisher eventbus.EventBus, logger *logrus.Logger) *FieldLogService {
	s := &FieldLogService{
		api:       api,
		publisher: publisher,
	}
	s.loader = collection.NewLoader(s.fetch, domain.MapLogEntry, logger)
	return s
}

func (s *FieldLogService) fetch(ctx context.Context) ([]domain.LogEntryRecord, error) {
	var records []domain.LogEntryRecord
	if err := s.api.GetCollection(ctx, resource, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *FieldLogService) GetAll(ctx context.Context) ([]domain.LogEntry, error) {
	return s.loader.Ensure(ctx)
}

func (s *FieldLogService) Reload(ctx context.Context) ([]domain.LogEntry, error) {
	s.loader.Invalidate()
	return s.loader.Load(ctx)
}

func (s *FieldLogService) Loading() bool {
	return s.loader.Loading()
}

// RemoveFromView hides the given entries until the next reload. No
// upstream call is made.
func (s *FieldLogService) RemoveFromView(ids []string) int {
	removed := 0
	s.loader.RemoveWhere(func(entry domain.LogEntry) bool {
		if slices.Contains(ids, entry.ID) {
			removed++
			return true
		}
		return false
	})
	if removed > 0 {
		s.publisher.Publish(&domain.RemovedFromViewEvent{IDs: ids})
	}
	return removed
}
