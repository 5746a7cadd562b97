// Package ws provides the websocket frontend: it upgrades HTTP connections,
// runs the login/create handshake, and bridges client lines and game events
// over JSON frames.
package ws

// Client frame types.
const (
	// FrameLogin authenticates an existing character.
	FrameLogin = "login"
	// FrameCreate creates a character and logs it in.
	FrameCreate = "create"
	// FrameCommand carries one game input line.
	FrameCommand = "command"
)

// Server frame types.
const (
	// FrameAuth reports the outcome of a login or create frame.
	FrameAuth = "auth"
	// FrameEvent carries one game event.
	FrameEvent = "event"
	// FrameInfo carries transport-level notices (welcome, shutdown).
	FrameInfo = "info"
)

// ClientFrame is one JSON message from the client.
type ClientFrame struct {
	Type string `json:"type"`
	// Name and Password are set for login and create frames.
	Name     string `json:"name,omitempty"`
	Password string `json:"password,omitempty"`
	// Line is set for command frames.
	Line string `json:"line,omitempty"`
}

// ServerFrame is one JSON message to the client.
type ServerFrame struct {
	Type string `json:"type"`
	// OK and Message report auth outcomes.
	OK      bool   `json:"ok,omitempty"`
	Message string `json:"message,omitempty"`
	// Kind and Text carry a game event.
	Kind string `json:"kind,omitempty"`
	Text string `json:"text,omitempty"`
}
