package model

type Sport struct {
	ID         int    `json:"id" bson:"_id" validate:"required,min=1"`
	Name       string `json:"name" bson:"name" validate:"required,min=2,max=60"`
	MaxPlayers int    `json:"max_players" bson:"max_players" validate:"required,min=1,max=100"`
}

type SportUpdate struct {
	Name       *string `json:"name,omitempty"`
	MaxPlayers *int    `json:"max_players,omitempty"`
}
