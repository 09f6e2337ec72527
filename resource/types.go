package resource

// Rid is an opaque reference to an open host resource.
// Rid 0 is reserved and always invalid.
type Rid uint32

// Kind identifies what an open resource is backed by.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindFile
	KindTCPConn
	KindTCPListener
	KindUDPConn
	KindUnixConn
	KindUnixListener
	KindUnixDatagram
	KindChildStdin
	KindChildStdout
	KindChildStderr
	KindFsWatcher
)

var kindNames = [...]string{
	KindInvalid:      "invalid",
	KindFile:         "file",
	KindTCPConn:      "tcpConn",
	KindTCPListener:  "tcpListener",
	KindUDPConn:      "udpConn",
	KindUnixConn:     "unixConn",
	KindUnixListener: "unixListener",
	KindUnixDatagram: "unixDatagram",
	KindChildStdin:   "childStdin",
	KindChildStdout:  "childStdout",
	KindChildStderr:  "childStderr",
	KindFsWatcher:    "fsWatcher",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Resource is an open host resource tracked by a Table.
type Resource interface {
	// Kind returns the resource kind identifier.
	Kind() Kind
	// Close releases the underlying host resource.
	Close() error
}

// Event types for resource lifecycle notifications.
type EventType uint8

const (
	EventOpened EventType = iota
	EventClosed
)

// Event represents a resource lifecycle event.
type Event struct {
	Rid  Rid
	Kind Kind
	Type EventType
}

// Observer receives notifications about resource lifecycle events.
type Observer interface {
	OnResourceEvent(Event)
}
