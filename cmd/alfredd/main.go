package main

//go-build: CGO_ENABLED=0

import (
	"flag"

	"github.com/golang/glog"

	fx "github.com/robotalks/alfred/pkg/framework"
	"github.com/robotalks/alfred/pkg/hal"
	"github.com/robotalks/alfred/pkg/hal/sim"
	"github.com/robotalks/alfred/pkg/link"
	"github.com/robotalks/alfred/pkg/robot"
	"github.com/robotalks/alfred/pkg/telemetry"
	"github.com/robotalks/alfred/pkg/transport"
)

func init() {
	robot.SetupFlags()
	transport.SetupFlags()
	telemetry.SetupFlags()
}

func main() {
	flag.Parse()
	defer glog.Flush()

	tconf := transport.NewConfig()
	rw := tconf.MustOpen()
	defer rw.Close()

	board := sim.NewBoard()
	recv := link.NewReceiver(rw)
	r, wd := robot.NewConfig().NewRobot(recv, board)
	loop := wd.NewLoop()
	loop.AddRunnable(fx.NamedRun("link", recv), r)

	if conf := telemetry.NewConfig(); conf.Enabled() {
		transportName := tconf.Port
		if tconf.Listen != "" {
			transportName = "ws://" + tconf.Listen + tconf.Path
		}
		pub, queue := conf.MustNewPublisher(telemetry.Meta{
			Identity:  r.Identity,
			Transport: transportName,
		}, r.Motors)
		indicator := hal.Indicators{board, pub}
		r.Indicator, wd.Indicator, r.Observer = indicator, indicator, pub
		loop.Add(pub)
		loop.AddRunnable(fx.RunFunc(queue.Run))
		glog.Infof("telemetry: publishing as %s", pub.Meta.ID)
	}

	glog.Infof("%s ready, watchdog period %v", r.Identity, wd.Period())
	loop.RunOrFail()
}
