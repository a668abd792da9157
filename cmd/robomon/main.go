package main

import (
	"context"
	"flag"
	"log"
	"strings"

	"github.com/robotalks/alfred/pkg/framework"
	"github.com/robotalks/alfred/pkg/telemetry"
	"github.com/robotalks/alfred/pkg/telemetry/mqtt"
)

var mqttURL = "mqtt://localhost:1883/robo/"

func init() {
	if val := telemetry.Default().MQTTBrokerURL; val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}

	q.Sub("+/#", func(topic string, payload []byte) {
		switch {
		case strings.HasSuffix(topic, "/"+telemetry.TopicStatus):
			st, err := telemetry.DecodeStatus(payload)
			if err != nil {
				log.Printf("%s: bad status: %v", topic, err)
				return
			}
			log.Printf("%s: %s", topic, st.String())
		default:
			log.Printf("%s: %s", topic, string(payload))
		}
	})
	err = framework.NewRunner().HandleSignals().Go(framework.RunFunc(q.Run)).Wait()
	if err != nil && err != context.Canceled {
		log.Fatalln(err)
	}
}
