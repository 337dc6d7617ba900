package domain

import (
	"time"

	"github.com/Rhymond/go-money"

	"github.com/oneacrefund/fieldops-console/pkg/collection"
	"github.com/oneacrefund/fieldops-console/pkg/mapping"
)

const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

// ProjectRecord mirrors the upstream wire shape of one field project.
type ProjectRecord struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Code           string     `json:"code"`
	Status         string     `json:"status"`
	SiteName       string     `json:"site_name"`
	Budget         int64      `json:"budget"`
	BudgetCurrency string     `json:"budget_currency"`
	StartDate      *time.Time `json:"start_date"`
	EndDate        *time.Time `json:"end_date"`
}

// Project is the console's view of one field project.
type Project struct {
	ID        string
	Name      string
	Code      string
	Status    string
	SiteName  string
	Budget    *money.Money
	StartDate time.Time
	EndDate   time.Time
}

func (p Project) Open() bool {
	return p.Status == StatusOpen
}

func MapProject(r ProjectRecord) Project {
	currency := r.BudgetCurrency
	if currency == "" {
		currency = money.KES
	}
	p := Project{
		ID:       r.ID,
		Name:     r.Name,
		Code:     mapping.Or(r.Code, collection.Sentinel),
		Status:   mapping.Or(r.Status, StatusClosed),
		SiteName: mapping.Or(r.SiteName, collection.Sentinel),
		Budget:   money.New(r.Budget, currency),
	}
	if r.StartDate != nil {
		p.StartDate = *r.StartDate
	}
	if r.EndDate != nil {
		p.EndDate = *r.EndDate
	}
	return p
}
