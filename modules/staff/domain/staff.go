package domain

import (
	"strings"
	"time"

	"github.com/oneacrefund/fieldops-console/pkg/collection"
	"github.com/oneacrefund/fieldops-console/pkg/mapping"
)

// StaffRecord mirrors the upstream wire shape of one staff member.
type StaffRecord struct {
	ID        string     `json:"id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Role      string     `json:"role"`
	Phone     string     `json:"phone"`
	Email     string     `json:"email"`
	Status    string     `json:"status"`
	SiteID    string     `json:"site_id"`
	SiteName  string     `json:"site_name"`
	CreatedAt *time.Time `json:"created_at"`
}

// Staff is the console's view of one field staff member.
type Staff struct {
	ID        string
	FirstName string
	LastName  string
	Role      string
	Phone     string
	Email     string
	Status    string
	SiteID    string
	SiteName  string
	CreatedAt time.Time
}

func (s Staff) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

func MapStaff(r StaffRecord) Staff {
	s := Staff{
		ID:        r.ID,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Role:      mapping.Or(r.Role, collection.Sentinel),
		Phone:     r.Phone,
		Email:     r.Email,
		Status:    mapping.Or(r.Status, "inactive"),
		SiteID:    r.SiteID,
		SiteName:  mapping.Or(r.SiteName, collection.Sentinel),
	}
	if r.CreatedAt != nil {
		s.CreatedAt = *r.CreatedAt
	}
	return s
}
