package domain

import "time"

// EnvironmentReading represents one room climate measurement. Readings are
// append-only; they are never updated after being recorded.
type EnvironmentReading struct {
	ID           string    `json:"id"`
	Room         string    `json:"room"`
	TemperatureC float64   `json:"temperatureC"`
	HumidityPct  float64   `json:"humidityPct"`
	RecordedAt   time.Time `json:"recordedAt"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NewEnvironmentReading creates a reading for a room
func NewEnvironmentReading(room string, temperatureC, humidityPct float64) *EnvironmentReading {
	now := time.Now().UTC()
	return &EnvironmentReading{
		Room:         room,
		TemperatureC: temperatureC,
		HumidityPct:  humidityPct,
		RecordedAt:   now,
		CreatedAt:    now,
	}
}

// Validate checks the reading is physically plausible
func (r *EnvironmentReading) Validate() error {
	if r.Room == "" {
		return ErrInvalidReading
	}
	if r.TemperatureC < -20 || r.TemperatureC > 60 {
		return ErrInvalidReading
	}
	if r.HumidityPct < 0 || r.HumidityPct > 100 {
		return ErrInvalidReading
	}
	return nil
}

var ErrInvalidReading = NewDomainError("environment reading out of range")
