// Package transport opens the byte stream the robot link runs on.
package transport

import (
	"flag"
	"fmt"
	"io"
	"log"
	"strings"

	envparse "github.com/caarlos0/env/v6"
	"github.com/golang/glog"

	"github.com/robotalks/alfred/pkg/transport/websocket"
)

// Defaults
const (
	DefaultPort = "/dev/rfcomm0"
	DefaultBaud = 115200
	DefaultPath = "/link"
)

// Config defines the link transport.
type Config struct {
	// Port is the serial device.
	Port string `env:"ALFRED_PORT"`
	Baud int    `env:"ALFRED_BAUD"`
	// Listen is the websocket listen address, it takes precedence
	// over the serial port when set.
	Listen string `env:"ALFRED_LISTEN"`
	Path   string
}

var defaultConfig = Config{
	Port: DefaultPort,
	Baud: DefaultBaud,
	Path: DefaultPath,
}

func init() {
	if err := envparse.Parse(&defaultConfig); err != nil {
		glog.Warningf("transport: environment error: %v", err)
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Port, "port", defaultConfig.Port, "Serial port device.")
	flag.IntVar(&defaultConfig.Baud, "baud", defaultConfig.Baud, "Serial port baud rate.")
	flag.StringVar(&defaultConfig.Listen, "listen", defaultConfig.Listen, "Websocket listen address, overrides the serial port.")
	flag.StringVar(&defaultConfig.Path, "path", defaultConfig.Path, "Websocket URL path.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Open opens the configured transport.
func (c *Config) Open() (io.ReadWriteCloser, error) {
	if c.Listen != "" {
		l, err := websocket.Listen(c.Listen, c.Path)
		if err != nil {
			return nil, fmt.Errorf("websocket listen %s error: %v", c.Listen, err)
		}
		return l, nil
	}
	return OpenSerial(c)
}

// Dial opens the controller side of a link. target is a ws:// URL or a
// serial port, empty for the configured port.
func (c *Config) Dial(target string) (io.ReadWriteCloser, error) {
	if strings.HasPrefix(target, "ws://") || strings.HasPrefix(target, "wss://") {
		conn, err := websocket.Dial(target)
		if err != nil {
			return nil, fmt.Errorf("websocket dial %s error: %v", target, err)
		}
		return conn, nil
	}
	conf := *c
	if target != "" {
		conf.Port = target
	}
	return OpenSerial(&conf)
}

// MustOpen opens the transport and fails on error.
func (c *Config) MustOpen() io.ReadWriteCloser {
	rw, err := c.Open()
	if err != nil {
		log.Fatalln(err)
	}
	return rw
}
