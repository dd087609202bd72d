// Package hasura implementa los repositorios de dominio sobre el GraphQL de Nhost.
// El usuario del request viaja como Bearer (ver graphql.Client); los permisos de
// Hasura filtran por user_id además del where explícito.
package hasura

import (
	"context"
	"fmt"
	"strings"
	"time"

	"muroro-livestock/internal/domain/animals"
	"muroro-livestock/internal/platform/graphql"
)

const animalTypename = "animals"

type AnimalsRepo struct {
	gql *graphql.Client
}

func NewAnimalsRepo(gql *graphql.Client) *AnimalsRepo {
	return &AnimalsRepo{gql: gql}
}

type animalPayload struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Type            string    `json:"type"`
	Breed           string    `json:"breed"`
	Name            *string   `json:"name"`
	BirthDate       *string   `json:"birth_date"`
	AcquisitionDate *string   `json:"acquisition_date"`
	Status          string    `json:"status"`
	HealthStatus    string    `json:"health_status"`
	Notes           *string   `json:"notes"`
	CreatedAt       time.Time `json:"created_at"`
}

func (p animalPayload) toDomain() animals.Animal {
	return animals.Animal{
		ID:              p.ID,
		UserID:          p.UserID,
		Type:            animals.Type(p.Type),
		Breed:           p.Breed,
		Name:            deref(p.Name),
		BirthDate:       parseDate(p.BirthDate),
		AcquisitionDate: parseDate(p.AcquisitionDate),
		Status:          animals.Status(p.Status),
		HealthStatus:    animals.HealthStatus(p.HealthStatus),
		Notes:           deref(p.Notes),
		CreatedAt:       p.CreatedAt,
	}
}

func (r *AnimalsRepo) Create(ctx context.Context, a animals.Animal) (animals.Animal, error) {
	object := map[string]any{
		"user_id":          a.UserID,
		"type":             string(a.Type),
		"breed":            a.Breed,
		"name":             nullable(a.Name),
		"birth_date":       nullable(animals.FormatDate(a.BirthDate)),
		"acquisition_date": nullable(animals.FormatDate(a.AcquisitionDate)),
		"status":           string(a.Status),
		"health_status":    string(a.HealthStatus),
		"notes":            nullable(a.Notes),
	}

	var out struct {
		Inserted *animalPayload `json:"insert_animals_one"`
	}
	if err := r.gql.Write(ctx, insertAnimal, map[string]any{"object": object}, &out); err != nil {
		return animals.Animal{}, err
	}
	if out.Inserted == nil {
		return animals.Animal{}, fmt.Errorf("insert_animals_one returned null")
	}
	return out.Inserted.toDomain(), nil
}

// GetByID sale del cache normalizado si la lista ya trajo el animal; si no, consulta por pk.
func (r *AnimalsRepo) GetByID(ctx context.Context, owner, id string) (animals.Animal, error) {
	id = strings.TrimSpace(id)

	var cached animalPayload
	if r.gql.Cache().Get(animalTypename, id, &cached) && cached.UserID != "" {
		if cached.UserID != owner {
			return animals.Animal{}, animals.ErrNotFound
		}
		return cached.toDomain(), nil
	}

	var out struct {
		Animal *animalPayload `json:"animals_by_pk"`
	}
	if err := r.gql.Read(ctx, getAnimal, map[string]any{"id": id}, &out); err != nil {
		return animals.Animal{}, err
	}
	if out.Animal == nil || out.Animal.UserID != owner {
		return animals.Animal{}, animals.ErrNotFound
	}
	return out.Animal.toDomain(), nil
}

func (r *AnimalsRepo) ListByOwner(ctx context.Context, owner string) ([]animals.Animal, error) {
	var out struct {
		Animals []animalPayload `json:"animals"`
	}
	if err := r.gql.Read(ctx, getAnimals, map[string]any{"userId": owner}, &out); err != nil {
		return nil, err
	}

	items := make([]animals.Animal, 0, len(out.Animals))
	ids := make([]string, 0, len(out.Animals))
	for _, p := range out.Animals {
		items = append(items, p.toDomain())
		ids = append(ids, p.ID)
	}
	// La lista es completa para owner: lo cacheado que no volvió se borró en otro lado.
	r.gql.Cache().Retain(animalTypename, "user_id", owner, ids)
	return items, nil
}

// Delete: delete_animals_by_pk devuelve null si la fila no existe o los permisos
// de Hasura no la dejan ver (animal de otro usuario).
func (r *AnimalsRepo) Delete(ctx context.Context, owner, id string) error {
	var out struct {
		Deleted *struct {
			ID string `json:"id"`
		} `json:"delete_animals_by_pk"`
	}
	if err := r.gql.Write(ctx, deleteAnimal, map[string]any{"id": strings.TrimSpace(id)}, &out); err != nil {
		return err
	}
	r.gql.Cache().Evict(animalTypename, id)
	if out.Deleted == nil {
		return animals.ErrNotFound
	}
	return nil
}

func nullable(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func parseDate(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil
	}
	return &t
}
