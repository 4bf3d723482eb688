package model

import "time"

type CourtStatus string

const (
	CourtAvailable   CourtStatus = "available"
	CourtMaintenance CourtStatus = "maintenance"
	CourtBlocked     CourtStatus = "blocked"
)

type EquipmentCondition string

const (
	ConditionGood        EquipmentCondition = "good"
	ConditionWorn        EquipmentCondition = "worn"
	ConditionDamaged     EquipmentCondition = "damaged"
	ConditionMaintenance EquipmentCondition = "maintenance"
)

// Gymnasium embeds its courts and equipment so that a booking check reads a
// single document.
type Gymnasium struct {
	ID        int         `json:"id" bson:"_id" validate:"required,min=1"`
	Name      string      `json:"name" bson:"name" validate:"required,min=2,max=120"`
	Address   string      `json:"address" bson:"address" validate:"required,max=200"`
	Capacity  int         `json:"capacity" bson:"capacity" validate:"min=0"`
	Courts    []Court     `json:"courts" bson:"courts" validate:"dive"`
	Equipment []Equipment `json:"equipment" bson:"equipment" validate:"dive"`
	CreatedAt time.Time   `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time   `json:"updated_at" bson:"updated_at"`
}

type Court struct {
	Number        int         `json:"number" bson:"number" validate:"required,min=1"`
	Capacity      int         `json:"capacity" bson:"capacity" validate:"min=0"`
	FloorType     string      `json:"floor_type" bson:"floor_type" validate:"required,max=50"`
	Covered       bool        `json:"covered" bson:"covered"`
	Status        CourtStatus `json:"status" bson:"status" validate:"required,oneof=available maintenance blocked"`
	AllowedSports []int       `json:"allowed_sports" bson:"allowed_sports" validate:"dive,min=1"`
}

type Equipment struct {
	ID                int                `json:"equipment_id" bson:"equipment_id" validate:"required,min=1"`
	Name              string             `json:"name" bson:"name" validate:"required,max=120"`
	Description       string             `json:"description,omitempty" bson:"description,omitempty" validate:"max=500"`
	Brand             string             `json:"brand,omitempty" bson:"brand,omitempty" validate:"max=80"`
	Condition         EquipmentCondition `json:"condition" bson:"condition" validate:"required,oneof=good worn damaged maintenance"`
	TotalQuantity     int                `json:"total_quantity" bson:"total_quantity" validate:"min=0"`
	AvailableQuantity int                `json:"available_quantity" bson:"available_quantity" validate:"min=0"`
}

// FindCourt returns the court with number and its index, or nil and -1.
func (g *Gymnasium) FindCourt(number int) (*Court, int) {
	for i := range g.Courts {
		if g.Courts[i].Number == number {
			return &g.Courts[i], i
		}
	}
	return nil, -1
}

// FindEquipment returns the equipment item with id and its index, or nil and -1.
func (g *Gymnasium) FindEquipment(id int) (*Equipment, int) {
	for i := range g.Equipment {
		if g.Equipment[i].ID == id {
			return &g.Equipment[i], i
		}
	}
	return nil, -1
}

func (g *Gymnasium) Snapshot(court *Court) VenueSnapshot {
	snap := VenueSnapshot{GymnasiumName: g.Name}
	if court != nil {
		snap.CourtStatus = court.Status
	}
	return snap
}

type GymnasiumUpdate struct {
	Name     *string `json:"name,omitempty"`
	Address  *string `json:"address,omitempty"`
	Capacity *int    `json:"capacity,omitempty"`
}

type CourtUpdate struct {
	Number        *int         `json:"number,omitempty"`
	Capacity      *int         `json:"capacity,omitempty"`
	FloorType     *string      `json:"floor_type,omitempty"`
	Covered       *bool        `json:"covered,omitempty"`
	Status        *CourtStatus `json:"status,omitempty"`
	AllowedSports *[]int       `json:"allowed_sports,omitempty"`
}

type EquipmentUpdate struct {
	Name              *string             `json:"name,omitempty"`
	Description       *string             `json:"description,omitempty"`
	Brand             *string             `json:"brand,omitempty"`
	Condition         *EquipmentCondition `json:"condition,omitempty"`
	TotalQuantity     *int                `json:"total_quantity,omitempty"`
	AvailableQuantity *int                `json:"available_quantity,omitempty"`
}

// EquipmentView is one equipment item flattened out of its gymnasium.
type EquipmentView struct {
	Equipment
	GymnasiumID   int    `json:"gymnasium_id" bson:"gymnasium_id"`
	GymnasiumName string `json:"gymnasium_name" bson:"gymnasium_name"`
}

type Page struct {
	Limit  int
	Offset int64
}
