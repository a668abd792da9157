package transport

import (
	"fmt"

	"github.com/golang/glog"
	"go.bug.st/serial"
)

// SerialMode returns the 8N1 port mode at baud.
func SerialMode(baud int) *serial.Mode {
	if baud <= 0 {
		baud = DefaultBaud
	}
	return &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}

// OpenSerial opens the serial port in the config.
func OpenSerial(c *Config) (serial.Port, error) {
	port, err := serial.Open(c.Port, SerialMode(c.Baud))
	if err != nil {
		return nil, fmt.Errorf("open serial port %s error: %v", c.Port, err)
	}
	glog.Infof("serial: opened %s at %d baud", c.Port, SerialMode(c.Baud).BaudRate)
	return port, nil
}

// Ports lists the serial ports available.
func Ports() ([]string, error) {
	return serial.GetPortsList()
}
