package domain

import (
	"fmt"
	"time"
)

// GrowthStage represents the lifecycle stage of a plant
type GrowthStage string

const (
	GrowthStageSeedling   GrowthStage = "SEEDLING"
	GrowthStageVegetative GrowthStage = "VEGETATIVE"
	GrowthStageFlowering  GrowthStage = "FLOWERING"
	GrowthStageHarvested  GrowthStage = "HARVESTED"
	GrowthStageDestroyed  GrowthStage = "DESTROYED"
)

// PlantOrigin represents how a plant was started
type PlantOrigin string

const (
	PlantOriginSeed  PlantOrigin = "SEED"
	PlantOriginClone PlantOrigin = "CLONE"
)

// Plant represents a tracked cultivation plant
type Plant struct {
	ID            string      `json:"id"`
	ControlNumber string      `json:"controlNumber"`
	Strain        string      `json:"strain"`
	Room          string      `json:"room"`
	Stage         GrowthStage `json:"stage"`
	Origin        PlantOrigin `json:"origin"`
	MotherID      *string     `json:"motherId,omitempty"`
	PlantedAt     time.Time   `json:"plantedAt"`
	Notes         string      `json:"notes,omitempty"`
	CreatedAt     time.Time   `json:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

// NewPlant creates a new plant in the seedling stage
func NewPlant(strain, room string, origin PlantOrigin, motherID *string) *Plant {
	now := time.Now().UTC()
	return &Plant{
		Strain:    strain,
		Room:      room,
		Stage:     GrowthStageSeedling,
		Origin:    origin,
		MotherID:  motherID,
		PlantedAt: now,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

var nextStage = map[GrowthStage]GrowthStage{
	GrowthStageSeedling:   GrowthStageVegetative,
	GrowthStageVegetative: GrowthStageFlowering,
	GrowthStageFlowering:  GrowthStageHarvested,
}

// Terminal reports whether the plant has left cultivation.
func (p *Plant) Terminal() bool {
	return p.Stage == GrowthStageHarvested || p.Stage == GrowthStageDestroyed
}

// AdvanceStage moves the plant to the next growth stage
func (p *Plant) AdvanceStage() error {
	next, ok := nextStage[p.Stage]
	if !ok {
		return ErrPlantTerminal
	}
	p.Stage = next
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkHarvested transitions a flowering plant directly to harvested
func (p *Plant) MarkHarvested() error {
	if p.Stage != GrowthStageFlowering {
		return ErrPlantNotFlowering
	}
	p.Stage = GrowthStageHarvested
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// Destroy marks the plant as destroyed
func (p *Plant) Destroy() error {
	if p.Terminal() {
		return ErrPlantTerminal
	}
	p.Stage = GrowthStageDestroyed
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// DisplayName returns the human-readable label used in audit entries
func (p *Plant) DisplayName() string {
	if p.ControlNumber == "" {
		return p.Strain
	}
	return fmt.Sprintf("%s (%s)", p.Strain, p.ControlNumber)
}

// PlantFilter represents filters for listing plants
type PlantFilter struct {
	Stage  *GrowthStage `json:"stage,omitempty"`
	Room   *string      `json:"room,omitempty"`
	Strain *string      `json:"strain,omitempty"`
	Limit  int          `json:"limit"`
}

var (
	ErrPlantNotFound     = NewDomainError("plant not found")
	ErrPlantTerminal     = NewDomainError("plant is harvested or destroyed")
	ErrPlantNotFlowering = NewDomainError("plant must be flowering to harvest")
)
