package dashboard

import "context"

// Repository arma los cuatro aggregates del usuario en una sola lectura.
type Repository interface {
	Aggregates(ctx context.Context, userID string) (Aggregates, error)
}
