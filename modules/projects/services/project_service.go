package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/oneacrefund/fieldops-console/internal/apiclient"
	"github.com/oneacrefund/fieldops-console/modules/projects/domain"
	"github.com/oneacrefund/fieldops-console/pkg/collection"
	"github.com/oneacrefund/fieldops-console/pkg/eventbus"
)

const resource = "project"

// ProjectDTO carries the writable fields of a create or edit. Dates use the
// upstream's date-only format.
type ProjectDTO struct {
	Name           string `json:"name" validate:"required"`
	Code           string `json:"code"`
	SiteID         string `json:"site_id"`
	Budget         int64  `json:"budget"`
	BudgetCurrency string `json:"budget_currency"`
	StartDate      string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate        string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
}

type statusPatch struct {
	Status string `json:"status"`
}

type ProjectService struct {
	api       *apiclient.Client
	publisher eventbus.EventBus
	loader    *collection.Loader[domain.ProjectRecord, domain.Project]
}

func NewProjectService(api *apiclient.Client, publisher eventbus.EventBus, logger *logrus.Logger) *ProjectService {
	s := &ProjectService{
		api:       api,
		publisher: publisher,
	}
	s.loader = collection.NewLoader(s.fetch, domain.MapProject, logger)
	return s
}

func (s *ProjectService) fetch(ctx context.Context) ([]domain.ProjectRecord, error) {
	var records []domain.ProjectRecord
	if err := s.api.GetCollection(ctx, resource, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *ProjectService) GetAll(ctx context.Context) ([]domain.Project, error) {
	return s.loader.Ensure(ctx)
}

func (s *ProjectService) Reload(ctx context.Context) ([]domain.Project, error) {
	s.loader.Invalidate()
	return s.loader.Load(ctx)
}

func (s *ProjectService) Loading() bool {
	return s.loader.Loading()
}

func (s *ProjectService) GetByID(ctx context.Context, id string) (domain.Project, error) {
	var record domain.ProjectRecord
	if err := s.api.GetResource(ctx, resource, id, &record); err != nil {
		return domain.Project{}, err
	}
	return domain.MapProject(record), nil
}

func (s *ProjectService) Create(ctx context.Context, dto ProjectDTO) (domain.Project, error) {
	var record domain.ProjectRecord
	if err := s.api.Create(ctx, resource, dto, &record); err != nil {
		return domain.Project{}, err
	}
	created := domain.MapProject(record)
	s.loader.Invalidate()
	s.publisher.Publish(&domain.CreatedEvent{Result: created})
	return created, nil
}

func (s *ProjectService) Update(ctx context.Context, id string, dto ProjectDTO) error {
	if err := s.api.Update(ctx, resource, id, dto); err != nil {
		return err
	}
	s.loader.Invalidate()
	s.publisher.Publish(&domain.UpdatedEvent{Result: domain.Project{ID: id}})
	return nil
}

func (s *ProjectService) Delete(ctx context.Context, id string) error {
	if err := s.api.Delete(ctx, resource, id); err != nil {
		return err
	}
	s.loader.RemoveWhere(func(p domain.Project) bool { return p.ID == id })
	s.publisher.Publish(&domain.DeletedEvent{ID: id})
	return nil
}

// Open reopens a project for field activity via a single-field PATCH.
func (s *ProjectService) Open(ctx context.Context, id string) error {
	return s.transition(ctx, id, domain.StatusOpen)
}

// Close ends field activity on a project.
func (s *ProjectService) Close(ctx context.Context, id string) error {
	return s.transition(ctx, id, domain.StatusClosed)
}

func (s *ProjectService) transition(ctx context.Context, id, status string) error {
	if err := s.api.Patch(ctx, resource, id, &statusPatch{Status: status}); err != nil {
		return err
	}
	s.loader.Invalidate()
	s.publisher.Publish(&domain.StatusChangedEvent{ID: id, Status: status})
	return nil
}
