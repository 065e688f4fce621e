package event

import "time"

const (
	CuesTopic        = "expedite.cues"
	TransitionsTopic = "expedite.transitions"

	EventCue             = "expedite.cue"
	EventBoardTransition = "expedite.board.transition"
)

// Transition kinds carried by cue and transition events.
const (
	TransitionNewOrder   = "new"
	TransitionOrderReady = "ready"
)

// CueEvent asks the front-of-house audio box to play a named cue.
// Published to NATS; the board never decodes audio itself.
type CueEvent struct {
	EventType   string    `json:"event_type"`
	OccurredAt  time.Time `json:"occurred_at"`
	Cue         string    `json:"cue"`
	Transition  string    `json:"transition"`
	OrderID     string    `json:"order_id"`
	OrderNumber string    `json:"order_number,omitempty"`
	OrderType   string    `json:"order_type,omitempty"`
	Board       string    `json:"board,omitempty"`
}

// BoardTransitionEvent records an order status change requested by a board
// (auto-advance or operator action). Consumed by the operations console
// audit stream.
type BoardTransitionEvent struct {
	EventType      string    `json:"event_type"`
	OccurredAt     time.Time `json:"occurred_at"`
	Board          string    `json:"board"`
	OrderID        string    `json:"order_id"`
	OrderNumber    string    `json:"order_number,omitempty"`
	NewStatus      string    `json:"new_status"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	Automatic      bool      `json:"automatic"`
}
