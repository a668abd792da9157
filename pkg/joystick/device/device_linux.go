// +build linux

package device

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"syscall"
	"unsafe"
)

const (
	jsIOCGAXES    uint = 0x80016a11
	jsIOCGBUTTONS uint = 0x80016a12
	jsIOCGNAME    uint = 0x80ff6a13

	jsEventButton uint8 = 0x01
	jsEventAxis   uint8 = 0x02
	jsEventInit   uint8 = 0x80

	jsEventSize = 8
)

// jsEvent is struct js_event from linux/joystick.h.
type jsEvent struct {
	Time   uint32
	Value  int16
	Type   uint8
	Number uint8
}

func (e *jsEvent) IsInit() bool { return e.Type&jsEventInit != 0 }
func (e *jsEvent) Index() int   { return int(e.Number) }

type axis struct{ jsEvent }

func (e *axis) Value() int { return int(e.jsEvent.Value) }

type button struct{ jsEvent }

func (e *button) Pressed() bool { return e.jsEvent.Value != 0 }

type linuxDevice struct {
	file    *os.File
	index   int
	name    string
	axes    uint8
	buttons uint8
}

// Open opens /dev/input/js<index>.
func Open(index int) (Device, error) {
	f, err := os.OpenFile(fmt.Sprintf("/dev/input/js%d", index), os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	d := &linuxDevice{file: f, index: index}
	var name [256]byte
	for _, q := range []struct {
		req uint
		ptr unsafe.Pointer
	}{
		{jsIOCGAXES, unsafe.Pointer(&d.axes)},
		{jsIOCGBUTTONS, unsafe.Pointer(&d.buttons)},
		{jsIOCGNAME, unsafe.Pointer(&name)},
	} {
		if errno := d.ioctl(q.req, q.ptr); errno != 0 {
			f.Close()
			return nil, errno
		}
	}
	if pos := bytes.IndexByte(name[:], 0); pos >= 0 {
		d.name = string(name[:pos])
	} else {
		d.name = string(name[:])
	}
	return d, nil
}

// DetectAndOpen opens the first device from startIndex. It returns nil
// without error if none exists.
func DetectAndOpen(startIndex int) (Device, error) {
	for index := startIndex; index < 32; index++ {
		d, err := Open(index)
		if os.IsNotExist(err) {
			continue
		}
		return d, err
	}
	return nil, nil
}

func (d *linuxDevice) Close() error     { return d.file.Close() }
func (d *linuxDevice) Index() int       { return d.index }
func (d *linuxDevice) Name() string     { return d.name }
func (d *linuxDevice) AxisCount() int   { return int(d.axes) }
func (d *linuxDevice) ButtonCount() int { return int(d.buttons) }

func (d *linuxDevice) ReadEvent() (Event, error) {
	var buf [jsEventSize]byte
	if _, err := d.file.Read(buf[:]); err != nil {
		return nil, err
	}
	var ev jsEvent
	if err := binary.Read(bytes.NewReader(buf[:]), binary.LittleEndian, &ev); err != nil {
		return nil, err
	}
	switch ev.Type &^ jsEventInit {
	case jsEventAxis:
		return &axis{ev}, nil
	case jsEventButton:
		return &button{ev}, nil
	}
	return &ev, nil
}

func (d *linuxDevice) ioctl(req uint, ptr unsafe.Pointer) syscall.Errno {
	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL, d.file.Fd(), uintptr(req), uintptr(ptr))
	return errno
}
