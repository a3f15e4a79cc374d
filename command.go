package liveframe

// Op identifies one kind of viewport mutation.
type Op string

const (
	// OpPage tells the client which page id to present when reconnecting.
	OpPage Op = "page"

	// OpSetSrc assigns the embedding target's source URL and arms the
	// completion signals for the carried epoch.
	OpSetSrc Op = "set-src"

	// OpLoader toggles the loading indicator element.
	OpLoader Op = "loader"

	// OpFrame toggles visibility of the frame (or its wrapper when the
	// binding has one).
	OpFrame Op = "frame"

	// OpStatus sets the status message text. Empty text clears it.
	OpStatus Op = "status"

	// OpRetryControl installs or removes the manual retry control inside
	// the status region.
	OpRetryControl Op = "retry-control"
)

// Command is a single viewport mutation pushed to the client. The client
// applies commands in arrival order; within one session that order is the
// UI transition order.
type Command struct {
	Op        Op     `json:"op"`
	Container string `json:"container,omitempty"`
	Target    string `json:"target,omitempty"` // element id the op applies to
	URL       string `json:"url,omitempty"`
	Epoch     int    `json:"epoch,omitempty"`
	Visible   bool   `json:"visible"`
	Text      string `json:"text,omitempty"`
}

// CommandSink receives viewport commands produced by sessions.
// A Page is a CommandSink; tests substitute a recording sink.
type CommandSink interface {
	Send(Command) error
}
