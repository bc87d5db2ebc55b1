package models

// Document is the complete normalized output. Field order is the JSON key
// order: meta, teams, players.
type Document struct {
	Meta    Meta     `json:"meta"`
	Teams   *TeamSet `json:"teams"`
	Players []Player `json:"players"`
}

// Meta describes where the document came from.
type Meta struct {
	Season             string   `json:"season"`
	Currency           string   `json:"currency"`
	Language           string   `json:"language"`
	SourceRepo         string   `json:"sourceRepo"`
	SourceSeasonFolder string   `json:"sourceSeasonFolder"`
	PinnedCommit       *string  `json:"pinnedCommit"`
	Notes              []string `json:"notes"`
}
