package domain

import (
	"time"

	"github.com/oneacrefund/fieldops-console/pkg/collection"
	"github.com/oneacrefund/fieldops-console/pkg/mapping"
)

// Device statuses as the upstream reports them. A posted device is live in
// the field and collecting registrations.
const (
	StatusPosted   = "posted"
	StatusUnposted = "unposted"
)

// DeviceRecord mirrors the upstream wire shape of one registration device.
type DeviceRecord struct {
	ID           string     `json:"id"`
	SerialNumber string     `json:"serial_number"`
	Model        string     `json:"model"`
	IMEI         string     `json:"imei"`
	Status       string     `json:"status"`
	AssignedTo   string     `json:"assigned_to"`
	SiteName     string     `json:"site_name"`
	CreatedAt    *time.Time `json:"created_at"`
}

// Device is the console's view of one registration device.
type Device struct {
	ID           string
	SerialNumber string
	Model        string
	IMEI         string
	Status       string
	AssignedTo   string
	SiteName     string
	CreatedAt    time.Time
}

func (d Device) Posted() bool {
	return d.Status == StatusPosted
}

func MapDevice(r DeviceRecord) Device {
	d := Device{
		ID:           r.ID,
		SerialNumber: r.SerialNumber,
		Model:        mapping.Or(r.Model, collection.Sentinel),
		IMEI:         r.IMEI,
		Status:       mapping.Or(r.Status, StatusUnposted),
		AssignedTo:   mapping.Or(r.AssignedTo, collection.Sentinel),
		SiteName:     mapping.Or(r.SiteName, collection.Sentinel),
	}
	if r.CreatedAt != nil {
		d.CreatedAt = *r.CreatedAt
	}
	return d
}
