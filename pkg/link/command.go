package link

import (
	"bytes"
	"strconv"
)

// MaxLineLen is the number of usable characters in a command line.
const MaxLineLen = 31

// Opcodes
const (
	OpPing     byte = 0
	OpScope    byte = 'a'
	OpSetSpeed byte = 's'
	OpIdentify byte = 'i'
	OpReset    byte = 'r'
)

// Response texts.
const (
	RespPing          = "0"
	RespScopeError    = "Error while setting ADC pin"
	RespSpeedSet      = "New speed set"
	RespSpeedError    = "Error while setting new speed"
	RespIdentify      = "ALFRED 1.0"
	RespReset         = "Robot reset"
	RespNotRecognised = "Command not recognised"
)

var arities = map[byte]int{
	OpPing:     0,
	OpScope:    1,
	OpSetSpeed: 2,
	OpIdentify: 0,
	OpReset:    0,
}

// Arity returns the number of arguments an opcode takes.
func Arity(op byte) (int, bool) {
	n, ok := arities[op]
	return n, ok
}

// Line is one received command line without the terminator.
type Line struct {
	Data []byte
	// Truncated is set when the line exceeded MaxLineLen and the
	// excess was discarded.
	Truncated bool
}

// Opcode returns the first byte, or OpPing for an empty line.
func (l Line) Opcode() byte {
	return byteAt(l.Data, 0)
}

// String implements fmt.Stringer.
func (l Line) String() string {
	return strconv.Quote(string(l.Data))
}

// Command is a parsed command line.
type Command struct {
	Opcode byte
	Args   []int
}

// Bytes encodes the command in the line format, without terminator.
func (c *Command) Bytes() []byte {
	var buf bytes.Buffer
	buf.WriteByte(c.Opcode)
	for _, arg := range c.Args {
		buf.WriteByte(',')
		buf.WriteString(strconv.Itoa(arg))
	}
	return buf.Bytes()
}

// String implements fmt.Stringer.
func (c *Command) String() string {
	if c.Opcode == OpPing {
		return "<ping>"
	}
	return string(c.Bytes())
}
