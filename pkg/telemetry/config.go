package telemetry

import (
	"flag"
	"fmt"
	"log"
	"time"

	envparse "github.com/caarlos0/env/v6"
	"github.com/golang/glog"

	"github.com/robotalks/alfred/pkg/env"
	"github.com/robotalks/alfred/pkg/telemetry/mqtt"
)

// Config defines the telemetry publishing.
type Config struct {
	// MQTTBrokerURL is like mqtt://host:port/topic-prefix/, telemetry
	// is disabled when empty.
	MQTTBrokerURL string `env:"ROBO_MQTT_URL"`
	ID            string `env:"ALFRED_ID"`
	Interval      time.Duration
}

var defaultConfig = Config{
	Interval: DefaultInterval,
}

func init() {
	if err := envparse.Parse(&defaultConfig); err != nil {
		glog.Warningf("telemetry: environment error: %v", err)
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL for telemetry, empty to disable.")
	flag.StringVar(&defaultConfig.ID, "id", defaultConfig.ID, "Robot ID in telemetry topics, defaults to the machine ID.")
	flag.DurationVar(&defaultConfig.Interval, "telemetry-interval", defaultConfig.Interval, "Status publish interval.")
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

// Enabled indicates a broker is configured.
func (c *Config) Enabled() bool {
	return c.MQTTBrokerURL != ""
}

// RobotID returns the configured ID or the short machine ID.
func (c *Config) RobotID() string {
	if c.ID != "" {
		return c.ID
	}
	return env.ShortID(12)
}

// NewPublisher creates a Publisher on an MQTT queue. The queue must be
// run for the publisher to reach the broker.
func (c *Config) NewPublisher(meta Meta, motors OutputReader) (*Publisher, *mqtt.Queue, error) {
	if meta.ID == "" {
		meta.ID = c.RobotID()
	}
	opts, prefix, err := mqtt.ClientOptionsFromURL(c.MQTTBrokerURL)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid MQTT URL %q: %v", c.MQTTBrokerURL, err)
	}
	if opts.ClientID == "" {
		opts.SetClientID("alfred:" + meta.ID)
	}
	opts.SetBinaryWill(prefix+meta.ID+"/"+TopicConnected, []byte("0"), 1, true)
	q := mqtt.NewQueue(opts, prefix)
	p := NewPublisher(q, meta, motors)
	if c.Interval > 0 {
		p.Interval = c.Interval
	}
	q.OnConnect = func(*mqtt.Queue) { p.Announce() }
	q.OnClose = func(*mqtt.Queue) { p.Withdraw() }
	return p, q, nil
}

// MustNewPublisher is NewPublisher failing on error.
func (c *Config) MustNewPublisher(meta Meta, motors OutputReader) (*Publisher, *mqtt.Queue) {
	p, q, err := c.NewPublisher(meta, motors)
	if err != nil {
		log.Fatalln(err)
	}
	return p, q
}
