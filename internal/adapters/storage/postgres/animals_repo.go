package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"muroro-livestock/internal/domain/animals"
)

// AnimalsRepo va directo contra la tabla public.animals del Postgres de Nhost.
// id y created_at los completa la base (gen_random_uuid(), now()).
type AnimalsRepo struct {
	db *sql.DB
}

func NewAnimalsRepo(db *sql.DB) *AnimalsRepo {
	return &AnimalsRepo{db: db}
}

const animalColumns = `
	id, user_id,
	type, breed, name,
	birth_date, acquisition_date,
	status, health_status, notes,
	created_at`

func (r *AnimalsRepo) Create(ctx context.Context, a animals.Animal) (animals.Animal, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO animals (
			user_id,
			type, breed, name,
			birth_date, acquisition_date,
			status, health_status, notes
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id, created_at
	`,
		a.UserID,
		string(a.Type),
		a.Breed,
		toNullString(a.Name),
		toNullDate(a.BirthDate),
		toNullDate(a.AcquisitionDate),
		string(a.Status),
		string(a.HealthStatus),
		toNullString(a.Notes),
	)
	if err := row.Scan(&a.ID, &a.CreatedAt); err != nil {
		return animals.Animal{}, err
	}
	return a, nil
}

func (r *AnimalsRepo) GetByID(ctx context.Context, owner, id string) (animals.Animal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return animals.Animal{}, animals.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT`+animalColumns+`
		FROM animals
		WHERE id = $1 AND user_id = $2
	`, id, owner)

	a, err := scanAnimal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return animals.Animal{}, animals.ErrNotFound
	}
	return a, err
}

func (r *AnimalsRepo) ListByOwner(ctx context.Context, owner string) ([]animals.Animal, error) {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `SELECT`+animalColumns+`
		FROM animals
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]animals.Animal, 0)
	for rows.Next() {
		a, err := scanAnimal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AnimalsRepo) Delete(ctx context.Context, owner, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM animals WHERE id = $1 AND user_id = $2`, id, owner)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return animals.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAnimal(s scanner) (animals.Animal, error) {
	var (
		a                   animals.Animal
		typ, status, health string
		name, notes         sql.NullString
		birth, acquired     sql.NullTime
	)
	if err := s.Scan(
		&a.ID,
		&a.UserID,
		&typ,
		&a.Breed,
		&name,
		&birth,
		&acquired,
		&status,
		&health,
		&notes,
		&a.CreatedAt,
	); err != nil {
		return animals.Animal{}, err
	}

	a.Type = animals.Type(typ)
	a.Status = animals.Status(status)
	a.HealthStatus = animals.HealthStatus(health)
	a.Name = name.String
	a.Notes = notes.String
	a.BirthDate = fromNullDate(birth)
	a.AcquisitionDate = fromNullDate(acquired)
	return a, nil
}

// vacío => NULL (un nombre vacío se guarda como null)
func toNullString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}

// birth_date / acquisition_date son DATE, los pasamos como NullTime para simplificar
func toNullDate(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func fromNullDate(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	// ojo: DATE llega como medianoche; normalizamos a UTC para formatear YYYY-MM-DD
	t := time.Date(nt.Time.Year(), nt.Time.Month(), nt.Time.Day(), 0, 0, 0, 0, time.UTC)
	return &t
}
