package connection

import "fmt"

// Mode is a connection management policy. The zero value is ModeBest, which
// asks the resolver to pick whatever suits the detected engine.
type Mode int

const (
	// ModeBest resolves to the most suitable mode for the engine.
	ModeBest Mode = iota
	// ModeStandard acquires a fresh pooled connection per operation.
	ModeStandard
	// ModeKeepAlive behaves like ModeStandard but holds a sentinel
	// connection open so lazy-starting servers stay warm.
	ModeKeepAlive
	// ModeSingleConnection routes every operation over one pinned
	// connection.
	ModeSingleConnection
	// ModeSingleWriter pins one connection for writes and serves reads
	// from ephemeral read-only connections.
	ModeSingleWriter
)

func (m Mode) String() string {
	switch m {
	case ModeBest:
		return "Best"
	case ModeStandard:
		return "Standard"
	case ModeKeepAlive:
		return "KeepAlive"
	case ModeSingleConnection:
		return "SingleConnection"
	case ModeSingleWriter:
		return "SingleWriter"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode maps a configuration spelling to a Mode. The empty string means
// ModeBest.
func ParseMode(name string) (Mode, error) {
	switch name {
	case "", "best", "Best", "auto":
		return ModeBest, nil
	case "standard", "Standard":
		return ModeStandard, nil
	case "keepalive", "keep_alive", "KeepAlive":
		return ModeKeepAlive, nil
	case "single_connection", "singleconnection", "SingleConnection":
		return ModeSingleConnection, nil
	case "single_writer", "singlewriter", "SingleWriter":
		return ModeSingleWriter, nil
	default:
		return ModeBest, fmt.Errorf("unknown connection mode %q", name)
	}
}

// Purpose states what the caller will do with an acquired connection.
type Purpose int

const (
	// PurposeRead marks read work; strategies may serve it from a
	// read-only connection.
	PurposeRead Purpose = iota
	// PurposeWrite marks write work.
	PurposeWrite
)

func (p Purpose) String() string {
	if p == PurposeWrite {
		return "Write"
	}
	return "Read"
}

// AccessMode restricts what a Manager may be used for.
type AccessMode int

const (
	// AccessReadWrite allows both purposes. This is the default.
	AccessReadWrite AccessMode = iota
	// AccessReadOnly rejects write transactions.
	AccessReadOnly
	// AccessWriteOnly rejects read-only transactions.
	AccessWriteOnly
)

func (a AccessMode) String() string {
	switch a {
	case AccessReadOnly:
		return "ReadOnly"
	case AccessWriteOnly:
		return "WriteOnly"
	default:
		return "ReadWrite"
	}
}

// ParseAccess maps a configuration spelling to an AccessMode. The empty
// string means AccessReadWrite.
func ParseAccess(name string) (AccessMode, error) {
	switch name {
	case "", "read_write", "readwrite", "ReadWrite":
		return AccessReadWrite, nil
	case "read_only", "readonly", "ReadOnly":
		return AccessReadOnly, nil
	case "write_only", "writeonly", "WriteOnly":
		return AccessWriteOnly, nil
	default:
		return AccessReadWrite, fmt.Errorf("unknown access mode %q", name)
	}
}

// Readable reports whether read transactions are allowed.
func (a AccessMode) Readable() bool { return a != AccessWriteOnly }

// Writable reports whether write transactions are allowed.
func (a AccessMode) Writable() bool { return a != AccessReadOnly }
