package model

import "time"

// SavingsGoal tracks progress toward a target amount. CurrentAmount only ever
// grows through the progress endpoint; it is never edited directly.
type SavingsGoal struct {
	ID            string     `json:"id"`
	UserID        string     `json:"userId"`
	Name          string     `json:"name"`
	TargetAmount  float64    `json:"targetAmount"`
	CurrentAmount float64    `json:"currentAmount"`
	Deadline      *time.Time `json:"deadline,omitempty"`
	Completed     bool       `json:"completed"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// SavingsGoalUpdate carries the fields of a partial update. Nil means
// "leave unchanged".
type SavingsGoalUpdate struct {
	Name         *string
	TargetAmount *float64
	Deadline     *time.Time
}

// Reached reports whether the goal's target has been met.
func (g SavingsGoal) Reached() bool {
	return g.TargetAmount > 0 && g.CurrentAmount >= g.TargetAmount
}
