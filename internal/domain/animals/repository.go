package animals

import "context"

// Repository: todas las operaciones van filtradas por dueño.
// ListByOwner devuelve ordenado por created_at desc.
type Repository interface {
	Create(ctx context.Context, a Animal) (Animal, error)
	GetByID(ctx context.Context, ownerUserID, id string) (Animal, error)
	ListByOwner(ctx context.Context, ownerUserID string) ([]Animal, error)
	Delete(ctx context.Context, ownerUserID, id string) error
}
