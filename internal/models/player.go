package models

// Player is the normalized output record for one source row.
// Field order is the JSON key order consumers expect.
type Player struct {
	Name        string       `json:"name" validate:"required"`
	BirthYear   *int         `json:"birthYear"`
	Nationality *string      `json:"nationality"`
	Position    Position     `json:"position" validate:"oneof=GK DF MF FW"`
	Rating      int          `json:"rating" validate:"min=120,max=238"`
	Development int          `json:"development" validate:"min=0,max=250"`
	Source      PlayerSource `json:"source"`
}

// PlayerSource keeps the source identifiers for traceability.
type PlayerSource struct {
	PlayerID string `json:"playerId"`
	TeamKey  string `json:"teamKey"`
}
