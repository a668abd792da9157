package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"log"

	"github.com/golang/glog"

	fx "github.com/robotalks/alfred/pkg/framework"
	"github.com/robotalks/alfred/pkg/joystick"
	"github.com/robotalks/alfred/pkg/link"
	"github.com/robotalks/alfred/pkg/transport"
)

var robotTarget string

func init() {
	transport.SetupFlags()
	joystick.SetupFlags()
	flag.StringVar(&robotTarget, "robot", robotTarget, "Serial port or ws:// URL of the robot, defaults to -port.")
}

func main() {
	flag.Parse()
	defer glog.Flush()

	rw, err := transport.NewConfig().Dial(robotTarget)
	if err != nil {
		log.Fatalln(err)
	}
	defer rw.Close()

	client := link.NewClient(rw)
	pad := joystick.NewConfig().NewPad(client)
	err = fx.NewRunner().HandleSignals().Go(
		fx.NamedRun("link", client),
		fx.NamedRun(pad.Name(), fx.RunFunc(func(ctx context.Context) error {
			id, err := client.Handshake(ctx)
			if err != nil {
				return err
			}
			glog.Infof("driving %s", id)
			return pad.Run(ctx)
		})),
	).Wait()
	if err != nil {
		glog.Exit(err)
	}
}
