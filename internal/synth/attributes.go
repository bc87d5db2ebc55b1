package synth

import "plimport/internal/models"

// Attribute bounds.
const (
	MinRating      = 120
	MaxRating      = 238
	MinDevelopment = 0
	MaxDevelopment = 250

	minStrength = 1
	maxStrength = 5

	ratingSpread   = 25
	devBase        = 80
	devSpread      = 120
	keeperDevCut   = 10
	keeperDevFloor = 60
)

var strengthBase = map[int]int{
	1: 178,
	2: 188,
	3: 198,
	4: 210,
	5: 222,
}

var positionBias = map[models.Position]int{
	models.Goalkeeper: -4,
	models.Defender:   -2,
	models.Midfielder: 0,
	models.Forward:    2,
}

// Rating returns the player's skill rating in [MinRating, MaxRating].
// strength is clamped to [1, 5] first.
func Rating(playerID string, strength int, pos models.Position) int {
	ts := clamp(strength, minStrength, maxStrength)
	noise := StableIndex(playerID+":rating", ratingSpread)

	return clamp(strengthBase[ts]+positionBias[pos]+noise, MinRating, MaxRating)
}

// Development returns the player's development potential in
// [MinDevelopment, MaxDevelopment]. Goalkeepers get a small cut.
func Development(playerID string, pos models.Position) int {
	dev := devBase + StableIndex(playerID+":dev", devSpread)

	if pos == models.Goalkeeper {
		dev = max(keeperDevFloor, dev-keeperDevCut)
	}

	return clamp(dev, MinDevelopment, MaxDevelopment)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
