// Package link provides the ALFRED line protocol.
package link

// The line protocol is spoken between a controller (phone, joystick pad,
// shell) and the robot over a byte stream, usually a Bluetooth serial
// port.
//
// Each command is one line of at most 31 characters terminated by '\n'.
// The first byte is the opcode, the second byte is a separator slot that
// is never interpreted, and the rest is a comma separated list of signed
// decimal integers, e.g. "s,100,-100". Responses are text lines
// terminated by CRLF.
//
// There is no acknowledgement or retransmission; the link is expected
// to deliver bytes in order.
//
// Producer: controller
// Consumer: robot
