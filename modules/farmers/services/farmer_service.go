package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/oneacrefund/fieldops-console/internal/apiclient"
	"github.com/oneacrefund/fieldops-console/modules/farmers/domain"
	"github.com/oneacrefund/fieldops-console/pkg/collection"
	"github.com/oneacrefund/fieldops-console/pkg/eventbus"
)

const resource = "farmer"

// FarmerDTO carries the writable fields of a create or edit.
type FarmerDTO struct {
	OafID     string `json:"oaf_id" validate:"required"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Gender    string `json:"gender"`
	Status    string `json:"status"`
	SiteID    string `json:"site_id"`
	GroupID   string `json:"group_id"`
}

// BulkDeleteResult separates confirmed removals from refused ones so the
// working set only drops rows the backend actually deleted.
type BulkDeleteResult struct {
	Deleted []string
	Failed  map[string]string
}

type FarmerService struct {
	api       *apiclient.Client
	publisher eventbus.EventBus
	loader    *collection.Loader[domain.FarmerRecord, domain.Farmer]
}

func NewFarmerService(api *apiclient.Client, publisher eventbus.EventBus, logger *logrus.Logger) *FarmerService {
	s := &FarmerService{
		api:       api,
		publisher: publisher,
	}
	s.loader = collection.NewLoader(s.fetch, domain.MapFarmer, logger)
	return s
}

func (s *FarmerService) fetch(ctx context.Context) ([]domain.FarmerRecord, error) {
	var records []domain.FarmerRecord
	if err := s.api.GetCollection(ctx, resource, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// GetAll returns the working set, loading it on first use.
func (s *FarmerService) GetAll(ctx context.Context) ([]domain.Farmer, error) {
	return s.loader.Ensure(ctx)
}

// Reload discards the snapshot and fetches fresh data.
func (s *FarmerService) Reload(ctx context.Context) ([]domain.Farmer, error) {
	s.loader.Invalidate()
	return s.loader.Load(ctx)
}

func (s *FarmerService) Loading() bool {
	return s.loader.Loading()
}

func (s *FarmerService) GetByID(ctx context.Context, id string) (domain.Farmer, error) {
	var record domain.FarmerRecord
	if err := s.api.GetResource(ctx, resource, id, &record); err != nil {
		return domain.Farmer{}, err
	}
	return domain.MapFarmer(record), nil
}

func (s *FarmerService) Create(ctx context.Context, dto FarmerDTO) (domain.Farmer, error) {
	var record domain.FarmerRecord
	if err := s.api.Create(ctx, resource, dto, &record); err != nil {
		return domain.Farmer{}, err
	}
	created := domain.MapFarmer(record)
	s.loader.Invalidate()
	s.publisher.Publish(&domain.CreatedEvent{Result: created})
	return created, nil
}

func (s *FarmerService) Update(ctx context.Context, id string, dto FarmerDTO) error {
	if err := s.api.Update(ctx, resource, id, dto); err != nil {
		return err
	}
	s.loader.Invalidate()
	s.publisher.Publish(&domain.UpdatedEvent{Result: domain.Farmer{ID: id}})
	return nil
}

// Delete removes one farmer upstream and reconciles the working set only
// after the backend confirms.
func (s *FarmerService) Delete(ctx context.Context, id string) error {
	if err := s.api.Delete(ctx, resource, id); err != nil {
		return err
	}
	s.loader.RemoveWhere(func(f domain.Farmer) bool { return f.ID == id })
	s.publisher.Publish(&domain.DeletedEvent{ID: id})
	return nil
}

// BulkDelete issues one remote delete per selected id. Rows whose delete
// the backend refused stay in the working set.
func (s *FarmerService) BulkDelete(ctx context.Context, ids []string) BulkDeleteResult {
	result := BulkDeleteResult{Failed: make(map[string]string)}
	for _, id := range ids {
		if err := s.Delete(ctx, id); err != nil {
			result.Failed[id] = err.Error()
			continue
		}
		result.Deleted = append(result.Deleted, id)
	}
	return result
}
