package animals

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("animal not found")
)

const dateLayout = "2006-01-02"

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateInput viene del formulario o del JSON. Las fechas son YYYY-MM-DD opcionales.
type CreateInput struct {
	Type            string
	Breed           string
	Name            string
	BirthDate       string
	AcquisitionDate string
	Status          string
	HealthStatus    string
	Notes           string
}

// Create valida los requeridos (type, breed) y aplica defaults
// (status=active, health_status=healthy).
func (s *Service) Create(ctx context.Context, ownerUserID string, in CreateInput) (Animal, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return Animal{}, fmt.Errorf("%w: owner is required", ErrInvalidInput)
	}

	a, err := buildAnimal(ownerUserID, in)
	if err != nil {
		return Animal{}, err
	}

	return s.repo.Create(ctx, a)
}

func buildAnimal(ownerUserID string, in CreateInput) (Animal, error) {
	typ := Type(strings.TrimSpace(in.Type))
	if typ == "" {
		return Animal{}, fmt.Errorf("%w: type is required", ErrInvalidInput)
	}
	if !typ.Valid() {
		return Animal{}, fmt.Errorf("%w: unknown type %q", ErrInvalidInput, typ)
	}

	breed := strings.TrimSpace(in.Breed)
	if breed == "" {
		return Animal{}, fmt.Errorf("%w: breed is required", ErrInvalidInput)
	}

	status := Status(strings.TrimSpace(in.Status))
	if status == "" {
		status = StatusActive
	}
	if !status.Valid() {
		return Animal{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}

	health := HealthStatus(strings.TrimSpace(in.HealthStatus))
	if health == "" {
		health = HealthHealthy
	}
	if !health.Valid() {
		return Animal{}, fmt.Errorf("%w: unknown health_status %q", ErrInvalidInput, health)
	}

	birth, err := parseDate("birth_date", in.BirthDate)
	if err != nil {
		return Animal{}, err
	}
	acquired, err := parseDate("acquisition_date", in.AcquisitionDate)
	if err != nil {
		return Animal{}, err
	}

	return Animal{
		UserID:          ownerUserID,
		Type:            typ,
		Breed:           breed,
		Name:            strings.TrimSpace(in.Name),
		BirthDate:       birth,
		AcquisitionDate: acquired,
		Status:          status,
		HealthStatus:    health,
		Notes:           strings.TrimSpace(in.Notes),
	}, nil
}

func parseDate(field, v string) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be YYYY-MM-DD", ErrInvalidInput, field)
	}
	return &t, nil
}

// FormatDate es el inverso de parseDate (vacío si nil).
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

func (s *Service) Get(ctx context.Context, ownerUserID, id string) (Animal, error) {
	id, ok := canonicalID(id)
	if strings.TrimSpace(ownerUserID) == "" || !ok {
		return Animal{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, ownerUserID, id)
}

// canonicalID: los ids son uuid; otra cosa no existe (y Postgres/Hasura la rechazarían con error).
func canonicalID(id string) (string, bool) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}

func (s *Service) List(ctx context.Context, ownerUserID string) ([]Animal, error) {
	if strings.TrimSpace(ownerUserID) == "" {
		return nil, fmt.Errorf("%w: owner is required", ErrInvalidInput)
	}
	return s.repo.ListByOwner(ctx, ownerUserID)
}

// Delete borra el animal del dueño. ErrNotFound si no existe o es de otro usuario.
func (s *Service) Delete(ctx context.Context, ownerUserID, id string) error {
	if strings.TrimSpace(ownerUserID) == "" {
		return fmt.Errorf("%w: owner is required", ErrInvalidInput)
	}
	id, ok := canonicalID(id)
	if !ok {
		return ErrNotFound
	}
	return s.repo.Delete(ctx, ownerUserID, id)
}
