package hasura

import (
	"context"

	"muroro-livestock/internal/domain/animals"
	"muroro-livestock/internal/domain/dashboard"
	"muroro-livestock/internal/platform/graphql"
)

// DashboardRepo manda los cuatro aggregates en un solo documento.
type DashboardRepo struct {
	gql *graphql.Client
}

func NewDashboardRepo(gql *graphql.Client) *DashboardRepo {
	return &DashboardRepo{gql: gql}
}

type sumPayload struct {
	Aggregate *struct {
		Sum *struct {
			Quantity *float64 `json:"quantity"`
		} `json:"sum"`
	} `json:"aggregate"`
}

func (s sumPayload) quantity() *float64 {
	if s.Aggregate == nil || s.Aggregate.Sum == nil {
		return nil
	}
	return s.Aggregate.Sum.Quantity
}

type statsPayload struct {
	AnimalsAggregate struct {
		Aggregate *struct {
			Count *int `json:"count"`
		} `json:"aggregate"`
	} `json:"animals_aggregate"`
	EggsAggregate  sumPayload `json:"eggs_aggregate"`
	FeedsAggregate sumPayload `json:"feeds_aggregate"`
	Animals        []struct {
		ID           string  `json:"id"`
		Name         *string `json:"name"`
		Type         string  `json:"type"`
		HealthStatus string  `json:"health_status"`
	} `json:"animals"`
}

func (r *DashboardRepo) Aggregates(ctx context.Context, userID string) (dashboard.Aggregates, error) {
	var out statsPayload
	if err := r.gql.Read(ctx, getDashboardStats, map[string]any{"userId": userID}, &out); err != nil {
		return dashboard.Aggregates{}, err
	}

	agg := dashboard.Aggregates{
		EggsQuantity:  out.EggsAggregate.quantity(),
		FeedsQuantity: out.FeedsAggregate.quantity(),
	}
	if out.AnimalsAggregate.Aggregate != nil {
		agg.AnimalCount = out.AnimalsAggregate.Aggregate.Count
	}
	for _, a := range out.Animals {
		agg.Sick = append(agg.Sick, dashboard.SickAnimal{
			ID:           a.ID,
			Name:         deref(a.Name),
			Type:         animals.Type(a.Type),
			HealthStatus: animals.HealthStatus(a.HealthStatus),
		})
	}
	return agg, nil
}
