package api

import "time"

// User is a registered hunter. PasswordHash never crosses the API
// boundary; handlers return PublicUser or a sanitized copy instead.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Avatar       string    `json:"avatar,omitempty"`
	TotalExp     int64     `json:"totalExp"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Public returns the ranking-safe view of the user: no email, no hash.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username, TotalExp: u.TotalExp}
}

// PublicUser is the view of a user exposed on the public ranking.
type PublicUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	TotalExp int64  `json:"totalExp"`
}

// Task is a quest on a hunter's board.
type Task struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"userId"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Difficulty  string     `json:"difficulty"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	ExpReward   int64      `json:"expReward"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Task difficulty ranks, lowest to highest.
const (
	DifficultyE = "E-Rank"
	DifficultyD = "D-Rank"
	DifficultyC = "C-Rank"
	DifficultyB = "B-Rank"
	DifficultyA = "A-Rank"
	DifficultyS = "S-Rank"
)

// Task board statuses.
const (
	StatusPending    = "Pending"
	StatusInProgress = "InProgress"
	StatusOnHold     = "OnHold"
	StatusCompleted  = "Completed"
)

// Task priorities.
const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
	PriorityUrgent = "Urgent"
)
