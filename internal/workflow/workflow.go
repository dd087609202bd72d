// Package workflow implementa el ciclo listar/alta/baja que comparten las páginas de registros.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/semaphore"

	"muroro-livestock/internal/platform/logger"
)

var ErrSubmitInProgress = errors.New("a submission is already in progress")

// State del formulario de alta.
type State int

const (
	Idle State = iota
	Editing
	Submitting
)

func (s State) String() string {
	switch s {
	case Editing:
		return "editing"
	case Submitting:
		return "submitting"
	default:
		return "idle"
	}
}

// Store es el backend de la entidad (adaptado desde el servicio de dominio).
type Store[T any] interface {
	List(ctx context.Context, owner string) ([]T, error)
	Create(ctx context.Context, owner string, d Draft) (T, error)
	Delete(ctx context.Context, owner, id string) error
}

// View es lo que la página necesita para renderizar.
type View[T any] struct {
	State State
	// SignInPrompt: no hay dueño, no se leyó nada.
	SignInPrompt bool

	Items []T
	// QueryError es el error de la lectura; la página muestra "Error: <mensaje>" sin datos.
	QueryError error

	Draft Draft
	// Alert es el mensaje bloqueante de una mutación fallida.
	Alert   string
	Missing []string

	// ConfirmDelete es el id que espera confirmación.
	ConfirmDelete string
}

func (v View[T]) FormVisible() bool { return v.State != Idle }

func (v View[T]) Empty() bool { return v.QueryError == nil && len(v.Items) == 0 }

type Workflow[T any] struct {
	schema Schema
	store  Store[T]
	log    logger.Logger

	// inFlight solo tiene entrada mientras el dueño tiene un alta en curso.
	mu       sync.Mutex
	inFlight map[string]*semaphore.Weighted
}

func New[T any](schema Schema, store Store[T], log logger.Logger) *Workflow[T] {
	if log == nil {
		log = logger.Nop()
	}
	return &Workflow[T]{
		schema:   schema,
		store:    store,
		log:      log.With(map[string]any{"component": "workflow", "entity": schema.Entity}),
		inFlight: map[string]*semaphore.Weighted{},
	}
}

func (w *Workflow[T]) Schema() Schema { return w.schema }

// Load lee la lista del dueño. Sin dueño no hay lectura.
func (w *Workflow[T]) Load(ctx context.Context, owner string) (View[T], error) {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return View[T]{SignInPrompt: true}, nil
	}

	items, err := w.store.List(ctx, owner)
	if cerr := ctx.Err(); cerr != nil {
		return View[T]{}, cerr
	}
	if err != nil {
		return View[T]{QueryError: err}, nil
	}
	return View[T]{Items: items}, nil
}

// Open abre el formulario con el borrador por defecto.
func (w *Workflow[T]) Open(ctx context.Context, owner string) (View[T], error) {
	v, err := w.Load(ctx, owner)
	if err != nil || v.SignInPrompt {
		return v, err
	}
	v.State = Editing
	if w.submitting(owner) {
		v.State = Submitting
	}
	v.Draft = w.schema.EmptyDraft()
	return v, nil
}

// Cancel cierra el formulario y descarta el borrador.
func (w *Workflow[T]) Cancel(ctx context.Context, owner string) (View[T], error) {
	return w.Load(ctx, owner)
}

// Submit crea la entidad. Solo una alta en vuelo por (dueño, entidad).
// Con éxito vuelve a Idle y la lista se relee después de que la escritura terminó.
// Con error queda en Editing con el mismo borrador y Alert seteado.
func (w *Workflow[T]) Submit(ctx context.Context, owner string, d Draft) (View[T], error) {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return View[T]{SignInPrompt: true}, nil
	}

	if missing := w.schema.Missing(d); len(missing) > 0 {
		v, err := w.Load(ctx, owner)
		if err != nil {
			return v, err
		}
		v.State = Editing
		v.Draft = d
		v.Missing = missing
		return v, nil
	}

	if !w.acquire(owner) {
		return View[T]{}, ErrSubmitInProgress
	}
	_, err := w.store.Create(ctx, owner, d)
	w.release(owner)

	if cerr := ctx.Err(); cerr != nil {
		return View[T]{}, cerr
	}

	if err != nil {
		w.log.Error(fmt.Sprintf("error adding %s", w.schema.Entity), map[string]any{"user_id": owner, "err": err})
		v, lerr := w.Load(ctx, owner)
		if lerr != nil {
			return v, lerr
		}
		v.State = Editing
		v.Draft = d
		v.Alert = w.alert("adding")
		return v, nil
	}

	return w.Load(ctx, owner)
}

// Delete sin confirmar no escribe nada: devuelve la lista pidiendo confirmación.
func (w *Workflow[T]) Delete(ctx context.Context, owner, id string, confirmed bool) (View[T], error) {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return View[T]{SignInPrompt: true}, nil
	}

	if !confirmed {
		v, err := w.Load(ctx, owner)
		if err != nil {
			return v, err
		}
		v.ConfirmDelete = id
		return v, nil
	}

	err := w.store.Delete(ctx, owner, id)
	if cerr := ctx.Err(); cerr != nil {
		return View[T]{}, cerr
	}

	v, lerr := w.Load(ctx, owner)
	if lerr != nil {
		return v, lerr
	}
	if err != nil {
		w.log.Error(fmt.Sprintf("error deleting %s", w.schema.Entity), map[string]any{"user_id": owner, "id": id, "err": err})
		v.Alert = w.alert("deleting")
	}
	return v, nil
}

func (w *Workflow[T]) alert(verb string) string {
	return fmt.Sprintf("Error %s %s. Please try again.", verb, w.schema.Entity)
}

// submitting indica si hay un alta en vuelo para el dueño (el botón se renderiza deshabilitado).
func (w *Workflow[T]) submitting(owner string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.inFlight[owner]
	return ok
}

// acquire reserva el alta del dueño; false si ya hay una en vuelo.
func (w *Workflow[T]) acquire(owner string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	sem, ok := w.inFlight[owner]
	if !ok {
		sem = semaphore.NewWeighted(1)
		w.inFlight[owner] = sem
	}
	return sem.TryAcquire(1)
}

// release libera la reserva y borra la entrada del dueño.
func (w *Workflow[T]) release(owner string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if sem, ok := w.inFlight[owner]; ok {
		sem.Release(1)
		delete(w.inFlight, owner)
	}
}
