// Package models defines the normalized squad document produced by the importer.
package models

// Position is one of the four canonical position tags.
type Position string

// Canonical positions.
const (
	Goalkeeper Position = "GK"
	Defender   Position = "DF"
	Midfielder Position = "MF"
	Forward    Position = "FW"
)

// Positions lists the canonical tags in pitch order.
var Positions = []Position{Goalkeeper, Defender, Midfielder, Forward}

// Valid reports whether p is a canonical tag.
func (p Position) Valid() bool {
	switch p {
	case Goalkeeper, Defender, Midfielder, Forward:
		return true
	}

	return false
}
