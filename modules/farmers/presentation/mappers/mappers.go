package mappers

import (
	"time"

	"github.com/oneacrefund/fieldops-console/modules/farmers/domain"
	"github.com/oneacrefund/fieldops-console/modules/farmers/presentation/viewmodels"
	"github.com/oneacrefund/fieldops-console/pkg/collection"
)

func FarmerToViewModel(f domain.Farmer) viewmodels.Farmer {
	createdAt := collection.Sentinel
	if !f.CreatedAt.IsZero() {
		createdAt = f.CreatedAt.Format(time.DateOnly)
	}
	loan := collection.Sentinel
	if f.LoanBalance != nil {
		loan = f.LoanBalance.Display()
	}
	return viewmodels.Farmer{
		ID:          f.ID,
		OafID:       f.OafID,
		FullName:    f.FullName(),
		Phone:       f.Phone,
		Gender:      f.Gender,
		Status:      f.Status,
		LoanBalance: loan,
		Site:        f.SiteName,
		District:    f.DistrictName,
		Pod:         f.PodName,
		Group:       f.GroupName,
		CreatedAt:   createdAt,
	}
}

func PairToViewModel(p domain.DuplicatePair) viewmodels.DuplicatePair {
	return viewmodels.DuplicatePair{
		Primary:    FarmerToViewModel(p.Primary),
		Secondary:  FarmerToViewModel(p.Secondary),
		Similarity: p.Similarity,
	}
}
