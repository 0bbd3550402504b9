package catalog

import "math"

// MaxLevel is the highest attainable level of any skill or mastery track.
const MaxLevel = 99

// xpTable[l] is the cumulative experience required to be level l.
// xpTable[1] == 0. Classic quarter-sum curve: the step from level l to l+1
// costs floor(l + 300*2^(l/7))/4 experience.
var xpTable [MaxLevel + 1]float64

func init() {
	total := 0.0
	for l := 2; l <= MaxLevel; l++ {
		step := math.Floor(float64(l-1) + 300*math.Pow(2, float64(l-1)/7))
		total += math.Floor(step / 4)
		xpTable[l] = total
	}
}

// XPForLevel returns the cumulative experience required for level.
// Levels below 2 cost nothing; levels above MaxLevel clamp.
func XPForLevel(level int) float64 {
	if level <= 1 {
		return 0
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	return xpTable[level]
}

// LevelForXP returns the level reached with xp experience, in 1..MaxLevel.
func LevelForXP(xp float64) int {
	if xp <= 0 {
		return 1
	}
	// The table is tiny; a linear scan keeps this trivially correct.
	for l := MaxLevel; l >= 2; l-- {
		if xp >= xpTable[l] {
			return l
		}
	}
	return 1
}
