package usecase

import (
	"context"
	"fmt"
	"time"

	"CardPulse/internal/domain/models"
	domrepo "CardPulse/internal/domain/repository"
	"CardPulse/pkg/util"
)

// ObservationsUseCase serves raw observation history for one product.
type ObservationsUseCase struct {
	store domrepo.ObservationStore
}

func NewObservationsUseCase(store domrepo.ObservationStore) *ObservationsUseCase {
	return &ObservationsUseCase{store: store}
}

type GetObservationsParams struct {
	ProductID string
	From      time.Time
	To        time.Time
	Limit     int
}

type GetObservationsResult struct {
	ProductID    string
	From         time.Time
	To           time.Time
	Count        int
	Observations []*models.Observation
}

func (uc *ObservationsUseCase) GetObservations(ctx context.Context, p GetObservationsParams) (*GetObservationsResult, error) {
	if p.ProductID == "" {
		return nil, fmt.Errorf("product id required")
	}
	if p.To.IsZero() {
		p.To = time.Now().UTC()
	}
	if p.From.After(p.To) {
		return nil, fmt.Errorf("from must be <= to")
	}
	if p.Limit <= 0 {
		p.Limit = 10000
	}
	if p.Limit > 50000 {
		p.Limit = 50000
	}
	// queries run at daily granularity; widen to whole UTC days
	p.From, p.To = util.AlignRangeToDays(p.From, p.To)

	obs, err := uc.store.Query(ctx, p.ProductID, p.From, p.To, p.Limit)
	if err != nil {
		return nil, fmt.Errorf("get observations: %w", err)
	}

	return &GetObservationsResult{
		ProductID:    p.ProductID,
		From:         p.From,
		To:           p.To,
		Count:        len(obs),
		Observations: obs,
	}, nil
}
