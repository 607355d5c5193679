package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError     Event = "error"
	EventTick      Event = "tick"
	EventExpired   Event = "expired"
	EventSubmitted Event = "submitted"
	EventPong      Event = "pong"
)

// TickResponse carries the remaining attempt time once per second. The
// client renders it directly and never resynchronizes; remaining time
// always derives from the stored expiry timestamp.
type TickResponse struct {
	Event            Event `json:"event"`
	RemainingSeconds int64 `json:"remaining_seconds"`
}

// ExpiredResponse tells the client the attempt ran out of time and the
// sheet was auto-submitted.
type ExpiredResponse struct {
	Event Event `json:"event"`
}

// SubmittedResponse tells the client the attempt was submitted from
// another connection.
type SubmittedResponse struct {
	Event Event `json:"event"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
