package services

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/oneacrefund/fieldops-console/internal/apiclient"
	"github.com/oneacrefund/fieldops-console/modules/locations/domain"
	"github.com/oneacrefund/fieldops-console/pkg/collection"
	"github.com/oneacrefund/fieldops-console/pkg/eventbus"
	"github.com/oneacrefund/fieldops-console/pkg/serrors"
)

// ErrNoSite is returned when a site-scoped collection is requested before
// any site is selected or loaded.
var ErrNoSite = serrors.NewError("NO_SITE_SELECTED", "no working site is selected", "Locations.Errors.NoSite")

// SiteDTO carries the writable fields of a site create or edit.
type SiteDTO struct {
	Name   string `json:"name" validate:"required"`
	Region string `json:"region"`
}

// GroupDTO carries the writable fields of a group create or edit.
type GroupDTO struct {
	Name  string `json:"name" validate:"required"`
	PodID string `json:"pod_id"`
}

// LocationService owns the site hierarchy. The working site id is cached
// in process and every dependent fetch reads it at call time, so a site
// switch or a sites reload rescopes the next district, pod and group load
// rather than any state captured earlier.
type LocationService struct {
	api       *apiclient.Client
	publisher eventbus.EventBus

	sites     *collection.Loader[domain.SiteRecord, domain.Site]
	districts *collection.Loader[domain.DistrictRecord, domain.District]
	pods      *collection.Loader[domain.PodRecord, domain.Pod]
	groups    *collection.Loader[domain.GroupRecord, domain.Group]

	mu            sync.Mutex
	currentSiteID string
}

func NewLocationService(api *apiclient.Client, publisher eventbus.EventBus, logger *logrus.Logger) *LocationService {
	s := &LocationService{
		api:       api,
		publisher: publisher,
	}
	s.sites = collection.NewLoader(s.fetchSites, domain.MapSite, logger)
	s.sites.OnAccept(s.adoptSites)
	s.districts = collection.NewLoader(s.fetchDistricts, domain.MapDistrict, logger)
	s.pods = collection.NewLoader(s.fetchPods, domain.MapPod, logger)
	s.groups = collection.NewLoader(s.fetchGroups, domain.MapGroup, logger)
	return s
}

func (s *LocationService) fetchSites(ctx context.Context) ([]domain.SiteRecord, error) {
	var records []domain.SiteRecord
	if err := s.api.GetCollection(ctx, "site", &records); err != nil {
		return nil, err
	}
	return records, nil
}

// adoptSites resets the working site whenever the loader accepts a fresh
// sites collection: the previous id may no longer exist, so the first site
// becomes current. Running on accept rather than on fetch keeps a
// superseded response from clobbering a selection made while it was in
// flight; the loader discards its records and this side effect together.
func (s *LocationService) adoptSites(records []domain.SiteRecord) {
	s.mu.Lock()
	s.currentSiteID = ""
	if len(records) > 0 {
		s.currentSiteID = records[0].ID
	}
	s.mu.Unlock()
	s.invalidateDependents()
}

func (s *LocationService) fetchDistricts(ctx context.Context) ([]domain.DistrictRecord, error) {
	siteID, err := s.requireSite()
	if err != nil {
		return nil, err
	}
	var records []domain.DistrictRecord
	if err := s.api.GetCollection(ctx, "site/"+siteID+"/district", &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *LocationService) fetchPods(ctx context.Context) ([]domain.PodRecord, error) {
	siteID, err := s.requireSite()
	if err != nil {
		return nil, err
	}
	var records []domain.PodRecord
	if err := s.api.GetCollection(ctx, "site/"+siteID+"/pod", &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *LocationService) fetchGroups(ctx context.Context) ([]domain.GroupRecord, error) {
	siteID, err := s.requireSite()
	if err != nil {
		return nil, err
	}
	var records []domain.GroupRecord
	if err := s.api.GetCollection(ctx, "site/"+siteID+"/group", &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *LocationService) requireSite() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentSiteID == "" {
		return "", ErrNoSite
	}
	return s.currentSiteID, nil
}

func (s *LocationService) invalidateDependents() {
	s.districts.Invalidate()
	s.pods.Invalidate()
	s.groups.Invalidate()
}

// CurrentSiteID returns the cached working site id.
func (s *LocationService) CurrentSiteID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentSiteID
}

// SelectSite switches the working site and rescopes the dependent
// collections.
func (s *LocationService) SelectSite(id string) {
	s.mu.Lock()
	s.currentSiteID = id
	s.mu.Unlock()
	s.invalidateDependents()
	s.publisher.Publish(&domain.SiteSelectedEvent{SiteID: id})
}

func (s *LocationService) GetSites(ctx context.Context) ([]domain.Site, error) {
	return s.sites.Ensure(ctx)
}

func (s *LocationService) ReloadSites(ctx context.Context) ([]domain.Site, error) {
	s.sites.Invalidate()
	return s.sites.Load(ctx)
}

func (s *LocationService) SitesLoading() bool {
	return s.sites.Loading()
}

func (s *LocationService) GetDistricts(ctx context.Context) ([]domain.District, error) {
	return s.districts.Ensure(ctx)
}

func (s *LocationService) GetPods(ctx context.Context) ([]domain.Pod, error) {
	return s.pods.Ensure(ctx)
}

func (s *LocationService) GetGroups(ctx context.Context) ([]domain.Group, error) {
	return s.groups.Ensure(ctx)
}

func (s *LocationService) CreateSite(ctx context.Context, dto SiteDTO) (domain.Site, error) {
	var record domain.SiteRecord
	if err := s.api.Create(ctx, "site", dto, &record); err != nil {
		return domain.Site{}, err
	}
	created := domain.MapSite(record)
	s.sites.Invalidate()
	s.publisher.Publish(&domain.SiteCreatedEvent{Result: created})
	return created, nil
}

func (s *LocationService) UpdateSite(ctx context.Context, id string, dto SiteDTO) error {
	if err := s.api.Update(ctx, "site", id, dto); err != nil {
		return err
	}
	s.sites.Invalidate()
	return nil
}

func (s *LocationService) DeleteSite(ctx context.Context, id string) error {
	if err := s.api.Delete(ctx, "site", id); err != nil {
		return err
	}
	s.sites.RemoveWhere(func(site domain.Site) bool { return site.ID == id })
	s.publisher.Publish(&domain.SiteDeletedEvent{ID: id})
	return nil
}

func (s *LocationService) CreateGroup(ctx context.Context, dto GroupDTO) (domain.Group, error) {
	var record domain.GroupRecord
	if err := s.api.Create(ctx, "group", dto, &record); err != nil {
		return domain.Group{}, err
	}
	created := domain.MapGroup(record)
	s.groups.Invalidate()
	s.publisher.Publish(&domain.GroupCreatedEvent{Result: created})
	return created, nil
}

func (s *LocationService) UpdateGroup(ctx context.Context, id string, dto GroupDTO) error {
	if err := s.api.Update(ctx, "group", id, dto); err != nil {
		return err
	}
	s.groups.Invalidate()
	return nil
}

func (s *LocationService) DeleteGroup(ctx context.Context, id string) error {
	if err := s.api.Delete(ctx, "group", id); err != nil {
		return err
	}
	s.groups.RemoveWhere(func(g domain.Group) bool { return g.ID == id })
	s.publisher.Publish(&domain.GroupDeletedEvent{ID: id})
	return nil
}
