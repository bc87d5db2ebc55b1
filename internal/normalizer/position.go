package normalizer

import (
	"math"
	"strconv"
	"strings"

	"plimport/internal/models"
)

var positionCodes = map[int]models.Position{
	1: models.Goalkeeper,
	2: models.Defender,
	3: models.Midfielder,
	4: models.Forward,
}

var positionSynonyms = map[string]models.Position{
	"GK":         models.Goalkeeper,
	"GKP":        models.Goalkeeper,
	"GOALKEEPER": models.Goalkeeper,
	"DEF":        models.Defender,
	"DF":         models.Defender,
	"DEFENDER":   models.Defender,
	"MID":        models.Midfielder,
	"MF":         models.Midfielder,
	"MIDFIELDER": models.Midfielder,
	"FWD":        models.Forward,
	"FW":         models.Forward,
	"FORWARD":    models.Forward,
	"ST":         models.Forward,
}

// prefixRules is evaluated in order; first match wins.
var prefixRules = []struct {
	prefix string
	pos    models.Position
}{
	{"GK", models.Goalkeeper},
	{"D", models.Defender},
	{"M", models.Midfielder},
	{"F", models.Forward},
	{"S", models.Forward},
}

// NormalizePosition maps a raw position cell to a canonical tag. Number-like
// values are element-type codes (1-4); anything else is matched as text.
// Unrecognized input maps to MF.
func NormalizePosition(raw string) models.Position {
	s := strings.TrimSpace(raw)

	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		if math.Abs(f) < 1e9 {
			if pos, ok := positionCodes[int(f)]; ok {
				return pos
			}
		}

		return models.Midfielder
	}

	p := strings.ToUpper(s)
	if pos, ok := positionSynonyms[p]; ok {
		return pos
	}

	for _, r := range prefixRules {
		if strings.HasPrefix(p, r.prefix) {
			return r.pos
		}
	}

	return models.Midfielder
}
