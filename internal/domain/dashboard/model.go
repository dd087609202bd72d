package dashboard

import (
	"strconv"

	"muroro-livestock/internal/domain/animals"
)

// SickAnimal es la fila de "Health Alerts".
type SickAnimal struct {
	ID           string               `json:"id"`
	Name         string               `json:"name"`
	Type         animals.Type         `json:"type"`
	HealthStatus animals.HealthStatus `json:"health_status"`
}

func (s SickAnimal) DisplayName() string {
	if s.Name == "" {
		return "Unnamed"
	}
	return s.Name
}

// Aggregates es la respuesta cruda del backend. nil = el aggregate vino null
// (sin filas para ese usuario).
type Aggregates struct {
	AnimalCount   *int
	EggsQuantity  *float64
	FeedsQuantity *float64
	Sick          []SickAnimal
}

// Stats ya con defaults aplicados.
type Stats struct {
	TotalAnimals  int          `json:"total_animals"`
	EggsCollected float64      `json:"eggs_collected"`
	FeedStock     float64      `json:"feed_stock"`
	SickAnimals   []SickAnimal `json:"sick_animals"`
}

// FeedStockLabel: "120 kg", "0 kg".
func (s Stats) FeedStockLabel() string {
	return formatQuantity(s.FeedStock) + " kg"
}

func (s Stats) EggsLabel() string {
	return formatQuantity(s.EggsCollected)
}

func (s Stats) AllHealthy() bool { return len(s.SickAnimals) == 0 }

func formatQuantity(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
