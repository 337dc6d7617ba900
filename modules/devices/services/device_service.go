package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/oneacrefund/fieldops-console/internal/apiclient"
	"github.com/oneacrefund/fieldops-console/modules/devices/domain"
	"github.com/oneacrefund/fieldops-console/pkg/collection"
	"github.com/oneacrefund/fieldops-console/pkg/eventbus"
)

const resource = "device"

// DeviceDTO carries the writable fields of a create or edit.
type DeviceDTO struct {
	SerialNumber string `json:"serial_number" validate:"required"`
	Model        string `json:"model"`
	IMEI         string `json:"imei"`
	AssignedTo   string `json:"assigned_to"`
	SiteID       string `json:"site_id"`
}

type statusPatch struct {
	Status string `json:"status"`
}

type DeviceService struct {
	api       *apiclient.Client
	publisher eventbus.EventBus
	loader    *collection.Loader[domain.DeviceRecord, domain.Device]
}

func NewDeviceService(api *apiclient.Client, publisher eventbus.EventBus, logger *logrus.Logger) *DeviceService {
	s := &DeviceService{
		api:       api,
		publisher: publisher,
	}
	s.loader = collection.NewLoader(s.fetch, domain.MapDevice, logger)
	return s
}

func (s *DeviceService) fetch(ctx context.Context) ([]domain.DeviceRecord, error) {
	var records []domain.DeviceRecord
	if err := s.api.GetCollection(ctx, resource, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *DeviceService) GetAll(ctx context.Context) ([]domain.Device, error) {
	return s.loader.Ensure(ctx)
}

func (s *DeviceService) Reload(ctx context.Context) ([]domain.Device, error) {
	s.loader.Invalidate()
	return s.loader.Load(ctx)
}

func (s *DeviceService) Loading() bool {
	return s.loader.Loading()
}

func (s *DeviceService) GetByID(ctx context.Context, id string) (domain.Device, error) {
	var record domain.DeviceRecord
	if err := s.api.GetResource(ctx, resource, id, &record); err != nil {
		return domain.Device{}, err
	}
	return domain.MapDevice(record), nil
}

func (s *DeviceService) Create(ctx context.Context, dto DeviceDTO) (domain.Device, error) {
	var record domain.DeviceRecord
	if err := s.api.Create(ctx, resource, dto, &record); err != nil {
		return domain.Device{}, err
	}
	created := domain.MapDevice(record)
	s.loader.Invalidate()
	s.publisher.Publish(&domain.CreatedEvent{Result: created})
	return created, nil
}

func (s *DeviceService) Update(ctx context.Context, id string, dto DeviceDTO) error {
	if err := s.api.Update(ctx, resource, id, dto); err != nil {
		return err
	}
	s.loader.Invalidate()
	s.publisher.Publish(&domain.UpdatedEvent{Result: domain.Device{ID: id}})
	return nil
}

func (s *DeviceService) Delete(ctx context.Context, id string) error {
	if err := s.api.Delete(ctx, resource, id); err != nil {
		return err
	}
	s.loader.RemoveWhere(func(d domain.Device) bool { return d.ID == id })
	s.publisher.Publish(&domain.DeletedEvent{ID: id})
	return nil
}

// Post marks a device as live in the field via a single-field PATCH.
func (s *DeviceService) Post(ctx context.Context, id string) error {
	return s.transition(ctx, id, domain.StatusPosted)
}

// Unpost withdraws a device from the field.
func (s *DeviceService) Unpost(ctx context.Context, id string) error {
	return s.transition(ctx, id, domain.StatusUnposted)
}

func (s *DeviceService) transition(ctx context.Context, id, status string) error {
	if err := s.api.Patch(ctx, resource, id, &statusPatch{Status: status}); err != nil {
		return err
	}
	s.loader.Invalidate()
	s.publisher.Publish(&domain.StatusChangedEvent{ID: id, Status: status})
	return nil
}
