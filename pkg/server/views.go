package server

import (
	"github.com/taskriser/taskriser/pkg/api"
	"github.com/taskriser/taskriser/pkg/leveling"
)

// userView is a user enriched with the derived progression fields.
type userView struct {
	api.User
	Level        int    `json:"level"`
	Rank         string `json:"rank"`
	NextLevelExp int64  `json:"nextLevelExp"`
}

// viewOf computes level, rank, and the EXP needed for the next level
// from the user's total EXP. NextLevelExp is -1 at the level cap.
func viewOf(u *api.User) userView {
	level := leveling.Level(u.TotalExp)
	return userView{
		User:         *u,
		Level:        level,
		Rank:         leveling.Rank(level),
		NextLevelExp: leveling.NextLevelBoundary(level + 1),
	}
}

// rankingEntry is a public user enriched with level and rank.
type rankingEntry struct {
	api.PublicUser
	Level int    `json:"level"`
	Rank  string `json:"rank"`
}
