// Package queue defines message payloads exchanged over the message broker
// and the publisher that delivers them. Downstream consumers (the email
// sender among them) act on these events without querying the primary
// database.
package queue

// Queue names. Routing keys equal queue names on the default exchange.
const (
	UserRegisteredQueue = "user.registered"
	GoalReachedQueue    = "goal.reached"
)

// UserRegisteredEvent is published after a successful registration so the
// email consumer can send the welcome message.
type UserRegisteredEvent struct {
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	RegisteredAt string `json:"registered_at"`
}

// GoalReachedEvent is published when a savings goal's progress first meets
// its target.
type GoalReachedEvent struct {
	UserID       string  `json:"user_id"`
	GoalID       string  `json:"goal_id"`
	GoalName     string  `json:"goal_name"`
	TargetAmount float64 `json:"target_amount"`
	ReachedAt    string  `json:"reached_at"`
}
