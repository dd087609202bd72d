package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidInput = errors.New("invalid input")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Stats lee los aggregates del dueño y reemplaza los null por 0.
func (s *Service) Stats(ctx context.Context, ownerUserID string) (Stats, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return Stats{}, fmt.Errorf("%w: owner is required", ErrInvalidInput)
	}

	agg, err := s.repo.Aggregates(ctx, ownerUserID)
	if err != nil {
		return Stats{}, err
	}
	return FromAggregates(agg), nil
}

func FromAggregates(agg Aggregates) Stats {
	st := Stats{SickAnimals: agg.Sick}
	if agg.AnimalCount != nil {
		st.TotalAnimals = *agg.AnimalCount
	}
	if agg.EggsQuantity != nil {
		st.EggsCollected = *agg.EggsQuantity
	}
	if agg.FeedsQuantity != nil {
		st.FeedStock = *agg.FeedsQuantity
	}
	if st.SickAnimals == nil {
		st.SickAnimals = []SickAnimal{}
	}
	return st
}
