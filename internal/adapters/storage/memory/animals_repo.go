package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"muroro-livestock/internal/domain/animals"
)

type AnimalRepo struct {
	mu   sync.RWMutex
	byID map[string]animals.Animal
	// seq desempata created_at iguales (altas en el mismo tick)
	seq   map[string]int
	next  int
	clock func() time.Time
}

func NewAnimalRepo() *AnimalRepo {
	return &AnimalRepo{
		byID:  make(map[string]animals.Animal),
		seq:   make(map[string]int),
		clock: time.Now,
	}
}

func (r *AnimalRepo) Create(ctx context.Context, a animals.Animal) (animals.Animal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a.ID = uuid.NewString()
	a.CreatedAt = r.clock().UTC()
	r.next++
	r.seq[a.ID] = r.next
	r.byID[a.ID] = a
	return a, nil
}

func (r *AnimalRepo) GetByID(ctx context.Context, owner, id string) (animals.Animal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[strings.TrimSpace(id)]
	if !ok || a.UserID != owner {
		return animals.Animal{}, animals.ErrNotFound
	}
	return a, nil
}

// ListByOwner: created_at desc, igual que la query de Hasura.
func (r *AnimalRepo) ListByOwner(ctx context.Context, owner string) ([]animals.Animal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]animals.Animal, 0)
	for _, a := range r.byID {
		if a.UserID == owner {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return r.seq[out[i].ID] > r.seq[out[j].ID]
	})
	return out, nil
}

func (r *AnimalRepo) Delete(ctx context.Context, owner, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok || a.UserID != owner {
		return animals.ErrNotFound
	}
	delete(r.byID, id)
	delete(r.seq, id)
	return nil
}

// sick devuelve los animales enfermos del dueño (para el dashboard).
func (r *AnimalRepo) sick(owner string) []animals.Animal {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []animals.Animal
	for _, a := range r.byID {
		if a.UserID == owner && a.HealthStatus == animals.HealthSick {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return r.seq[out[i].ID] < r.seq[out[j].ID] })
	return out
}

func (r *AnimalRepo) count(owner string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, a := range r.byID {
		if a.UserID == owner {
			n++
		}
	}
	return n
}
