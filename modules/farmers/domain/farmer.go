package domain

import (
	"time"

	"github.com/Rhymond/go-money"

	"github.com/oneacrefund/fieldops-console/pkg/collection"
	"github.com/oneacrefund/fieldops-console/pkg/mapping"
)

// FarmerRecord is the wire shape of one farmer as the registration API
// returns it. Nested relations may be absent for partially registered
// farmers.
type FarmerRecord struct {
	ID        string       `json:"id"`
	OafID     string       `json:"oaf_id"`
	FirstName string       `json:"first_name"`
	LastName  string       `json:"last_name"`
	Phone     string       `json:"phone"`
	Gender    string       `json:"gender"`
	Status    string       `json:"status"`
	LoanMinor int64        `json:"loan_balance"`
	Currency  string       `json:"loan_currency"`
	Site      *LocationRef `json:"site"`
	District  *LocationRef `json:"district"`
	Pod       *LocationRef `json:"pod"`
	Group     *LocationRef `json:"group"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// LocationRef is the minimal embedded shape of a farmer's assignment.
type LocationRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Farmer is the console's working-set entity: relations flattened to
// display names, the loan balance carried as money.
type Farmer struct {
	ID           string
	OafID        string
	FirstName    string
	LastName     string
	Phone        string
	Gender       string
	Status       string
	LoanBalance  *money.Money
	SiteName     string
	DistrictName string
	PodName      string
	GroupName    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (f Farmer) FullName() string {
	if f.FirstName == "" && f.LastName == "" {
		return collection.Sentinel
	}
	if f.LastName == "" {
		return f.FirstName
	}
	return f.FirstName + " " + f.LastName
}

// MapFarmer flattens a wire record into the working-set entity, defaulting
// absent relations to the sentinel.
func MapFarmer(r FarmerRecord) Farmer {
	currency := mapping.Or(r.Currency, money.KES)
	return Farmer{
		ID:           r.ID,
		OafID:        mapping.Or(r.OafID, collection.Sentinel),
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Phone:        mapping.Or(r.Phone, collection.Sentinel),
		Gender:       mapping.Or(r.Gender, collection.Sentinel),
		Status:       mapping.Or(r.Status, "inactive"),
		LoanBalance:  money.New(r.LoanMinor, currency),
		SiteName:     refName(r.Site),
		DistrictName: refName(r.District),
		PodName:      refName(r.Pod),
		GroupName:    refName(r.Group),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func refName(ref *LocationRef) string {
	if ref == nil || ref.Name == "" {
		return collection.Sentinel
	}
	return ref.Name
}
