// Package at implements the wire model for the Hands-Free Profile AT
// command grammar used over an RFCOMM byte stream: the frame type, a
// non-generic parser tuned to the small set of HFP/Apple-extension
// commands this engine understands, and the matching builder.
package at

import "errors"

// Type classifies an AT frame the way the HFP control channel exchanges
// it: either we are issuing a command (in one of its four shapes) or the
// peer is issuing a response/unsolicited result code.
type Type int

const (
	// Raw carries bytes that bypass formatting entirely — used only for
	// pass-through traffic injected by an external AT handler.
	Raw Type = iota
	// Cmd is a bare command, "AT<command>".
	Cmd
	// CmdGet is a query, "AT<command>?".
	CmdGet
	// CmdSet is an assignment, "AT<command>=<value>".
	CmdSet
	// CmdTest is a capability probe, "AT<command>=?".
	CmdTest
	// Resp is a response or unsolicited result code, "<command>: <value>"
	// or, when command is empty, a bare "<value>" such as "OK"/"ERROR".
	Resp
)

func (t Type) String() string {
	switch t {
	case Raw:
		return "RAW"
	case Cmd:
		return "CMD"
	case CmdGet:
		return "CMD_GET"
	case CmdSet:
		return "CMD_SET"
	case CmdTest:
		return "CMD_TEST"
	case Resp:
		return "RESP"
	default:
		return "UNKNOWN"
	}
}

// Frame is one AT message: a type, an optional command (e.g. "+CIND"),
// and an optional value. A non-Raw frame built with Build and re-parsed
// with Parse yields an identical Frame.
type Frame struct {
	Type    Type
	Command string
	Value   string
}

// ErrBadMessage is returned by Parse when the input does not form a
// complete, well-formed AT frame.
var ErrBadMessage = errors.New("at: malformed message")

// OK and ERROR are the two bare final response values every command can
// reply with; they appear as a Resp frame with an empty Command.
const (
	OK    = "OK"
	ERROR = "ERROR"
)
