package at

import (
	"bytes"
)

// Parse consumes exactly one AT frame from the front of data and returns
// it along with whatever bytes follow it. Callers that just refilled a
// socket buffer with possibly several concatenated frames should call
// Parse repeatedly on the returned tail until it is empty.
//
// This is deliberately not a general AT grammar: it understands only the
// two message shapes this engine ever sees on the wire — "AT<cmd>..." for
// commands we are issued, and "<cmd>: <value>" / bare "<value>" for
// responses and URCs — which is all HFP requires.
func Parse(data []byte) (Frame, []byte, error) {
	data = bytes.TrimLeft(data, "\r\n")
	if len(data) == 0 {
		return Frame{}, data, nil
	}

	if bytes.HasPrefix(data, []byte("AT")) {
		return parseCommand(data[2:], data)
	}
	return parseResponse(data)
}

func parseCommand(body []byte, original []byte) (Frame, []byte, error) {
	end := bytes.IndexByte(body, '\r')
	if end < 0 {
		return Frame{}, original, ErrBadMessage
	}

	line := body[:end]
	tail := body[end+1:]
	tail = bytes.TrimPrefix(tail, []byte("\n"))

	idx := bytes.IndexAny(line, "=?")
	if idx < 0 {
		return Frame{Type: Cmd, Command: string(line)}, tail, nil
	}

	command := string(line[:idx])
	switch line[idx] {
	case '?':
		return Frame{Type: CmdGet, Command: command}, tail, nil
	case '=':
		if idx+1 < len(line) && line[idx+1] == '?' {
			return Frame{Type: CmdTest, Command: command}, tail, nil
		}
		return Frame{Type: CmdSet, Command: command, Value: string(line[idx+1:])}, tail, nil
	}

	// Unreachable: IndexAny only ever matches '=' or '?'.
	return Frame{}, original, ErrBadMessage
}

func parseResponse(data []byte) (Frame, []byte, error) {
	end := bytes.Index(data, []byte("\r\n"))
	if end < 0 {
		return Frame{}, data, ErrBadMessage
	}

	line := data[:end]
	tail := data[end+2:]
	if len(line) == 0 {
		return Frame{}, data, ErrBadMessage
	}

	if sep := bytes.Index(line, []byte(": ")); sep > 0 && looksLikeCommand(line[:sep]) {
		return Frame{Type: Resp, Command: string(line[:sep]), Value: string(line[sep+2:])}, tail, nil
	}

	return Frame{Type: Resp, Value: string(line)}, tail, nil
}

// looksLikeCommand rejects a false-positive ": " split inside a bare
// value (free text never starts with '+' and never contains whitespace
// in the HFP command vocabulary this engine dispatches on).
func looksLikeCommand(b []byte) bool {
	if len(b) == 0 || b[0] != '+' {
		return false
	}
	return !bytes.ContainsAny(b, " \t")
}
