package animals

import (
	"strings"
	"time"
)

// Type define las especies que maneja la granja.
// @Enum Cow, Goat, Chicken, Roadrunner, Sheep, Pig
type Type string

const (
	TypeCow        Type = "Cow"
	TypeGoat       Type = "Goat"
	TypeChicken    Type = "Chicken"
	TypeRoadrunner Type = "Roadrunner"
	TypeSheep      Type = "Sheep"
	TypePig        Type = "Pig"
)

// Status es el estado del animal dentro del rodeo.
// @Enum active, sold, deceased, transferred
type Status string

const (
	StatusActive      Status = "active"
	StatusSold        Status = "sold"
	StatusDeceased    Status = "deceased"
	StatusTransferred Status = "transferred"
)

// HealthStatus es el estado sanitario.
// @Enum healthy, sick, injured, under_treatment
type HealthStatus string

const (
	HealthHealthy        HealthStatus = "healthy"
	HealthSick           HealthStatus = "sick"
	HealthInjured        HealthStatus = "injured"
	HealthUnderTreatment HealthStatus = "under_treatment"
)

// Orden de los selects del formulario.
var (
	Types          = []Type{TypeCow, TypeGoat, TypeChicken, TypeRoadrunner, TypeSheep, TypePig}
	Statuses       = []Status{StatusActive, StatusSold, StatusDeceased, StatusTransferred}
	HealthStatuses = []HealthStatus{HealthHealthy, HealthSick, HealthInjured, HealthUnderTreatment}
)

func (t Type) Valid() bool {
	for _, v := range Types {
		if v == t {
			return true
		}
	}
	return false
}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

func (h HealthStatus) Valid() bool {
	for _, v := range HealthStatuses {
		if v == h {
			return true
		}
	}
	return false
}

// Label: "under_treatment" => "under treatment".
func (h HealthStatus) Label() string {
	return strings.Replace(string(h), "_", " ", 1)
}

// Animal es un registro de ganado. Siempre pertenece a un único usuario.
type Animal struct {
	ID     string
	UserID string

	Type  Type
	Breed string
	Name  string // vacío => null en el backend

	BirthDate       *time.Time
	AcquisitionDate *time.Time

	Status       Status
	HealthStatus HealthStatus

	Notes string

	CreatedAt time.Time
}

// DisplayName es lo que se muestra en cards y tablas.
func (a Animal) DisplayName() string {
	if strings.TrimSpace(a.Name) == "" {
		return "Unnamed"
	}
	return a.Name
}
