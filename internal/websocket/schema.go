// Package websocket holds the wire types and helpers for the
// generation-progress stream.
package websocket

// Event tags a server-to-client progress message.
type Event string

const (
	EventProgress  Event = "progress"
	EventCompleted Event = "completed"
	EventFailed    Event = "failed"
	EventError     Event = "error"
)

// ProgressMessage is pushed to watchers whenever a generation job changes.
type ProgressMessage struct {
	Event        Event  `json:"event"`
	JobID        string `json:"job_id"`
	State        string `json:"state"`
	BatchesDone  int    `json:"batches_done"`
	BatchesTotal int    `json:"batches_total"`
	PoolID       string `json:"pool_id,omitempty"`
	PoolSize     int    `json:"pool_size,omitempty"`
	Error        string `json:"error,omitempty"`
}

// ErrorMessage reports a stream-level failure before closing.
type ErrorMessage struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}
