package models

// Stream event types. A connection emits exactly one EventConnection first,
// any number of EventProgress with non-decreasing progress, and exactly one
// EventError or EventSuccess, after which the channel is closed.
const (
	EventConnection = "connection"
	EventProgress   = "progress"
	EventError      = "error"
	EventSuccess    = "success"
)

// StreamEvent is one ordered JSON message on the trip creation or
// regeneration channel.
type StreamEvent struct {
	Type     string `json:"type"`
	Message  string `json:"message"`
	Progress int    `json:"progress"`
	TripID   string `json:"trip_id,omitempty"`
	Data     any    `json:"data,omitempty"`
}
