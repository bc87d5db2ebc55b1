package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// DefaultStrength is used when a team has no usable strength value or a
// player's team key matches no team.
const DefaultStrength = 3

// Team is the output shape of one team entry.
type Team struct {
	Name  string  `json:"name"`
	Short *string `json:"short"`
}

// TeamSet maps canonical team keys to teams and strength tiers. Keys keep
// the order in which they were first added.
type TeamSet struct {
	teams    map[string]Team
	strength map[string]int
	order    []string
}

// NewTeamSet creates an empty team set.
func NewTeamSet() *TeamSet {
	return &TeamSet{
		teams:    make(map[string]Team),
		strength: make(map[string]int),
	}
}

// Put stores a team under key. A repeated key overwrites the values but
// keeps its original position.
func (s *TeamSet) Put(key string, team Team, strength int) {
	if _, ok := s.teams[key]; !ok {
		s.order = append(s.order, key)
	}

	s.teams[key] = team
	s.strength[key] = strength
}

// Get returns the team stored under key.
func (s *TeamSet) Get(key string) (Team, bool) {
	t, ok := s.teams[key]
	return t, ok
}

// Strength returns the raw strength tier for key, or DefaultStrength when
// the key is unknown.
func (s *TeamSet) Strength(key string) int {
	if v, ok := s.strength[key]; ok {
		return v
	}

	return DefaultStrength
}

// Keys returns the team keys in insertion order.
func (s *TeamSet) Keys() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)

	return out
}

// Len returns the number of distinct team keys.
func (s *TeamSet) Len() int {
	return len(s.order)
}

// MarshalJSON writes the teams as an object whose keys follow insertion order.
func (s *TeamSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, key := range s.order {
		if i > 0 {
			buf.WriteByte(',')
		}

		k, err := marshalRaw(key)
		if err != nil {
			return nil, err
		}

		v, err := marshalRaw(s.teams[key])
		if err != nil {
			return nil, err
		}

		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

func marshalRaw(v any) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// CanonicalKey turns a raw team key cell into the string used for lookups.
// Integral numbers lose their float spelling ("1.0" and "1" are the same key).
func CanonicalKey(raw string) string {
	s := strings.TrimSpace(raw)

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return s
	}

	if f != math.Trunc(f) || math.Abs(f) >= 1e15 {
		return s
	}

	return strconv.FormatInt(int64(f), 10)
}
