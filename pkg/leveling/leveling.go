// Package leveling holds the EXP progression tables: level from total
// EXP, rank name from level, and the EXP reward per task difficulty.
package leveling

import "github.com/taskriser/taskriser/pkg/api"

// levelBoundaries[i] is the minimum total EXP for level i+2.
// Below 100 EXP a hunter is level 1.
var levelBoundaries = []int64{100, 300, 600, 1000, 2000, 5000, 10000}

// MaxLevel is the highest attainable level.
const MaxLevel = 8

// Level returns the hunter level (1..MaxLevel) for a total EXP amount.
func Level(exp int64) int {
	level := 1
	for _, boundary := range levelBoundaries {
		if exp < boundary {
			return level
		}
		level++
	}
	return level
}

// rankNames[i] is the rank for level i+1.
var rankNames = []string{"E", "D", "C", "B", "A", "S", "S+", "NATIONAL"}

// Rank returns the rank name for a level. Levels outside 1..MaxLevel
// clamp to the nearest rank.
func Rank(level int) string {
	if level < 1 {
		level = 1
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	return rankNames[level-1]
}

// NextLevelBoundary returns the total EXP needed to reach the given
// level, or -1 when the level is beyond the progression table.
func NextLevelBoundary(level int) int64 {
	if level <= 1 {
		return 0
	}
	if level-2 < len(levelBoundaries) {
		return levelBoundaries[level-2]
	}
	return -1
}

// difficultyRewards maps task difficulty to the EXP awarded on completion.
var difficultyRewards = map[string]int64{
	api.DifficultyE: 10,
	api.DifficultyD: 20,
	api.DifficultyC: 30,
	api.DifficultyB: 40,
	api.DifficultyA: 50,
	api.DifficultyS: 100,
}

// DifficultyReward returns the EXP reward for a task difficulty, or 0
// for an unknown difficulty.
func DifficultyReward(difficulty string) int64 {
	return difficultyRewards[difficulty]
}
