package memory

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"muroro-livestock/internal/domain/dashboard"
)

// DashboardRepo arma los aggregates sobre AnimalRepo y registros de huevos/alimento
// cargados con AddEggs/AddFeed (las páginas de huevos y alimento todavía no escriben).
type DashboardRepo struct {
	animals *AnimalRepo

	mu    sync.RWMutex
	eggs  map[string][]float64
	feeds map[string][]float64
}

func NewDashboardRepo(animals *AnimalRepo) *DashboardRepo {
	return &DashboardRepo{
		animals: animals,
		eggs:    map[string][]float64{},
		feeds:   map[string][]float64{},
	}
}

func (r *DashboardRepo) AddEggs(userID string, quantity float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.eggs[userID] = append(r.eggs[userID], quantity)
}

func (r *DashboardRepo) AddFeed(userID string, quantity float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.feeds[userID] = append(r.feeds[userID], quantity)
}

// Aggregates replica la semántica SQL: sum sin filas => null, count => 0.
func (r *DashboardRepo) Aggregates(ctx context.Context, userID string) (dashboard.Aggregates, error) {
	var out dashboard.Aggregates
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n := r.animals.count(userID)
		out.AnimalCount = &n
		return ctx.Err()
	})
	g.Go(func() error {
		out.EggsQuantity = r.sum(r.eggs, userID)
		return ctx.Err()
	})
	g.Go(func() error {
		out.FeedsQuantity = r.sum(r.feeds, userID)
		return ctx.Err()
	})
	g.Go(func() error {
		for _, a := range r.animals.sick(userID) {
			out.Sick = append(out.Sick, dashboard.SickAnimal{
				ID:           a.ID,
				Name:         a.Name,
				Type:         a.Type,
				HealthStatus: a.HealthStatus,
			})
		}
		return ctx.Err()
	})

	if err := g.Wait(); err != nil {
		return dashboard.Aggregates{}, err
	}
	return out, nil
}

func (r *DashboardRepo) sum(m map[string][]float64, userID string) *float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := m[userID]
	if len(rows) == 0 {
		return nil
	}
	var total float64
	for _, q := range rows {
		total += q
	}
	return &total
}
