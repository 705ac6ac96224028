package at

import "strings"

// Build formats f into its wire representation. Commands we issue are
// terminated with a bare "\r"; responses and unsolicited results are
// terminated with "\r\n" — mirroring how the two message families are
// actually framed on the wire, so a reader never has to guess which
// terminator a given message used.
func Build(f Frame) []byte {
	var b strings.Builder

	switch f.Type {
	case Raw:
		b.WriteString(f.Value)
	case Cmd:
		b.WriteString("AT")
		b.WriteString(f.Command)
		b.WriteByte('\r')
	case CmdGet:
		b.WriteString("AT")
		b.WriteString(f.Command)
		b.WriteString("?\r")
	case CmdSet:
		b.WriteString("AT")
		b.WriteString(f.Command)
		b.WriteByte('=')
		b.WriteString(f.Value)
		b.WriteByte('\r')
	case CmdTest:
		b.WriteString("AT")
		b.WriteString(f.Command)
		b.WriteString("=?\r")
	case Resp:
		if f.Command != "" {
			b.WriteString(f.Command)
			b.WriteString(": ")
			b.WriteString(f.Value)
		} else {
			b.WriteString(f.Value)
		}
		b.WriteString("\r\n")
	}

	return []byte(b.String())
}
