package domain

import (
	"time"

	"github.com/oneacrefund/fieldops-console/pkg/collection"
	"github.com/oneacrefund/fieldops-console/pkg/mapping"
)

// SiteRecord mirrors the upstream wire shape of one operating site.
type SiteRecord struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Region    string     `json:"region"`
	CreatedAt *time.Time `json:"created_at"`
}

type Site struct {
	ID        string
	Name      string
	Region    string
	CreatedAt time.Time
}

func MapSite(r SiteRecord) Site {
	s := Site{
		ID:     r.ID,
		Name:   r.Name,
		Region: mapping.Or(r.Region, collection.Sentinel),
	}
	if r.CreatedAt != nil {
		s.CreatedAt = *r.CreatedAt
	}
	return s
}

// DistrictRecord is scoped to the currently selected site.
type DistrictRecord struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	SiteID string `json:"site_id"`
}

type District struct {
	ID     string
	Name   string
	SiteID string
}

func MapDistrict(r DistrictRecord) District {
	return District(r)
}

type PodRecord struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	DistrictName string `json:"district_name"`
}

type Pod struct {
	ID           string
	Name         string
	DistrictName string
}

func MapPod(r PodRecord) Pod {
	return Pod{
		ID:           r.ID,
		Name:         r.Name,
		DistrictName: mapping.Or(r.DistrictName, collection.Sentinel),
	}
}

type GroupRecord struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	PodName     string `json:"pod_name"`
	MemberCount int    `json:"member_count"`
}

type Group struct {
	ID          string
	Name        string
	PodName     string
	MemberCount int
}

func MapGroup(r GroupRecord) Group {
	return Group{
		ID:          r.ID,
		Name:        r.Name,
		PodName:     mapping.Or(r.PodName, collection.Sentinel),
		MemberCount: r.MemberCount,
	}
}
