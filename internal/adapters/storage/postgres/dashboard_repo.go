package postgres

import (
	"context"
	"database/sql"

	"golang.org/x/sync/errgroup"

	"muroro-livestock/internal/domain/animals"
	"muroro-livestock/internal/domain/dashboard"
)

// DashboardRepo corre las cuatro lecturas del tablero en paralelo.
type DashboardRepo struct {
	db *sql.DB
}

func NewDashboardRepo(db *sql.DB) *DashboardRepo {
	return &DashboardRepo{db: db}
}

func (r *DashboardRepo) Aggregates(ctx context.Context, userID string) (dashboard.Aggregates, error) {
	var (
		out         dashboard.Aggregates
		count       int
		eggs, feeds sql.NullFloat64
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return r.db.QueryRowContext(ctx,
			`SELECT count(*) FROM animals WHERE user_id = $1`, userID).Scan(&count)
	})
	g.Go(func() error {
		// sum() sin filas devuelve NULL, igual que el aggregate de Hasura
		return r.db.QueryRowContext(ctx,
			`SELECT sum(quantity)::float8 FROM eggs WHERE user_id = $1`, userID).Scan(&eggs)
	})
	g.Go(func() error {
		return r.db.QueryRowContext(ctx,
			`SELECT sum(quantity)::float8 FROM feeds WHERE user_id = $1`, userID).Scan(&feeds)
	})
	g.Go(func() error {
		sick, err := r.sick(ctx, userID)
		out.Sick = sick
		return err
	})

	if err := g.Wait(); err != nil {
		return dashboard.Aggregates{}, err
	}

	out.AnimalCount = &count
	if eggs.Valid {
		out.EggsQuantity = &eggs.Float64
	}
	if feeds.Valid {
		out.FeedsQuantity = &feeds.Float64
	}
	return out, nil
}

func (r *DashboardRepo) sick(ctx context.Context, userID string) ([]dashboard.SickAnimal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, type, health_status
		FROM animals
		WHERE user_id = $1 AND health_status = $2
	`, userID, string(animals.HealthSick))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []dashboard.SickAnimal
	for rows.Next() {
		var (
			s           dashboard.SickAnimal
			name        sql.NullString
			typ, health string
		)
		if err := rows.Scan(&s.ID, &name, &typ, &health); err != nil {
			return nil, err
		}
		s.Name = name.String
		s.Type = animals.Type(typ)
		s.HealthStatus = animals.HealthStatus(health)
		out = append(out, s)
	}
	return out, rows.Err()
}
