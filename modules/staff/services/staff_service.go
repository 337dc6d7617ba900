package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/oneacrefund/fieldops-console/internal/apiclient"
	"github.com/oneacrefund/fieldops-console/modules/staff/domain"
	"github.com/oneacrefund/fieldops-console/pkg/collection"
	"github.com/oneacrefund/fieldops-console/pkg/eventbus"
)

const resource = "staff"

// StaffDTO carries the writable fields of a create or edit.
type StaffDTO struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name"`
	Role      string `json:"role" validate:"required"`
	Phone     string `json:"phone"`
	Email     string `json:"email" validate:"omitempty,email"`
	Status    string `json:"status"`
	SiteID    string `json:"site_id"`
}

type StaffService struct {
	api       *apiclient.Client
	publisher eventbus.EventBus
	loader    *collection.Loader[domain.StaffRecord, domain.Staff]
}

func NewStaffService(api *apiclient.Client, publisher eventbus.EventBus, logger *logrus.Logger) *StaffService {
	s := &StaffService{
		api:       api,
		publisher: publisher,
	}
	s.loader = collection.NewLoader(s.fetch, domain.MapStaff, logger)
	return s
}

func (s *StaffService) fetch(ctx context.Context) ([]domain.StaffRecord, error) {
	var records []domain.StaffRecord
	if err := s.api.GetCollection(ctx, resource, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *StaffService) GetAll(ctx context.Context) ([]domain.Staff, error) {
	return s.loader.Ensure(ctx)
}

func (s *StaffService) Reload(ctx context.Context) ([]domain.Staff, error) {
	s.loader.Invalidate()
	return s.loader.Load(ctx)
}

func (s *StaffService) Loading() bool {
	return s.loader.Loading()
}

func (s *StaffService) GetByID(ctx context.Context, id string) (domain.Staff, error) {
	var record domain.StaffRecord
	if err := s.api.GetResource(ctx, resource, id, &record); err != nil {
		return domain.Staff{}, err
	}
	return domain.MapStaff(record), nil
}

func (s *StaffService) Create(ctx context.Context, dto StaffDTO) (domain.Staff, error) {
	var record domain.StaffRecord
	if err := s.api.Create(ctx, resource, dto, &record); err != nil {
		return domain.Staff{}, err
	}
	created := domain.MapStaff(record)
	s.loader.Invalidate()
	s.publisher.Publish(&domain.CreatedEvent{Result: created})
	return created, nil
}

func (s *StaffService) Update(ctx context.Context, id string, dto StaffDTO) error {
	if err := s.api.Update(ctx, resource, id, dto); err != nil {
		return err
	}
	s.loader.Invalidate()
	s.publisher.Publish(&domain.UpdatedEvent{Result: domain.Staff{ID: id}})
	return nil
}

func (s *StaffService) Delete(ctx context.Context, id string) error {
	if err := s.api.Delete(ctx, resource, id); err != nil {
		return err
	}
	s.loader.RemoveWhere(func(m domain.Staff) bool { return m.ID == id })
	s.publisher.Publish(&domain.DeletedEvent{ID: id})
	return nil
}
