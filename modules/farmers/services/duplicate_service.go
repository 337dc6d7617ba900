package services

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/oneacrefund/fieldops-console/internal/apiclient"
	"github.com/oneacrefund/fieldops-console/modules/farmers/domain"
	"github.com/oneacrefund/fieldops-console/pkg/eventbus"
)

// DuplicatePage is one page of potential duplicates as shown on screen.
type DuplicatePage struct {
	Pairs       []domain.DuplicatePair
	CurrentPage int
	PerPage     int
}

// DuplicateService drives the duplicate-resolution screen: paged listing
// plus keep-old/keep-new decisions. The working set is the current page;
// resolved pairs leave it immediately after upstream confirmation.
type DuplicateService struct {
	api       *apiclient.Client
	publisher eventbus.EventBus
	logger    *logrus.Logger

	mu   sync.Mutex
	page DuplicatePage
}

func NewDuplicateService(api *apiclient.Client, publisher eventbus.EventBus, logger *logrus.Logger) *DuplicateService {
	return &DuplicateService{
		api:       api,
		publisher: publisher,
		logger:    logger,
	}
}

// GetPage fetches one page of flagged pairs.
func (s *DuplicateService) GetPage(ctx context.Context, page, perPage int) (DuplicatePage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	var records []domain.DuplicatePairRecord
	currentPage, err := s.api.GetDuplicates(ctx, page, perPage, &records)
	if err != nil {
		s.logger.WithError(err).Warn("failed to load potential duplicates")
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.page, err
	}

	pairs := make([]domain.DuplicatePair, 0, len(records))
	for _, record := range records {
		pairs = append(pairs, domain.MapDuplicatePair(record))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.page = DuplicatePage{Pairs: pairs, CurrentPage: currentPage, PerPage: perPage}
	return s.page, nil
}

// CurrentPage returns the last loaded page.
func (s *DuplicateService) CurrentPage() DuplicatePage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// Keep resolves a pair by retaining one side. On success the exact pair,
// identified by both member ids, leaves the working set; the backend owns
// the merge of the discarded record.
func (s *DuplicateService) Keep(ctx context.Context, side apiclient.KeepSide, pair domain.DuplicatePair) error {
	if err := s.api.KeepDuplicate(ctx, side, pair.Primary.ID, pair.Secondary.ID); err != nil {
		return err
	}

	kept, discarded := pair.Primary, pair.Secondary
	if side == apiclient.KeepNew {
		kept, discarded = pair.Secondary, pair.Primary
	}

	s.mu.Lock()
	remaining := s.page.Pairs[:0:0]
	for _, p := range s.page.Pairs {
		if p.Key() == pair.Key() {
			continue
		}
		remaining = append(remaining, p)
	}
	s.page.Pairs = remaining
	s.mu.Unlock()

	s.publisher.Publish(&domain.DuplicateResolvedEvent{KeptID: kept.ID, DiscardedID: discarded.ID})
	return nil
}
