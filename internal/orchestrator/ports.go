package orchestrator

// SessionID is an opaque handle for one tap-to-connect peer session.
type SessionID string

// Transport sends NDEF bytes to the peer of a session. done is called once
// with the send result.
type Transport interface {
	Send(session SessionID, data []byte, done func(error))
}

// Radio is the secondary (Bluetooth) radio adapter.
type Radio interface {
	Enabled() bool
	Address() string
	Pair(address string, done func(error))
	Unpair(address string)
}

// Settings requests persistent setting changes. Fire-and-forget.
type Settings interface {
	RequestEnable(key string)
}

// FileSender starts a bulk transfer to a paired device.
type FileSender interface {
	SendFile(address string, payload []byte)
}

// Notifier receives transfer completion events for the host.
type Notifier interface {
	TransferComplete(Completion)
}

// Completion statuses reported to the host.
const (
	StatusSuccess = 0
	StatusFailure = 1
)

// Completion reports how an outgoing transfer resolved.
type Completion struct {
	Status    int
	RequestID string
	Session   SessionID
}
