package main

import (
	"github.com/robotalks/alfred/pkg/cli/sh"
	"github.com/robotalks/alfred/pkg/transport"
)

//go-build: CGO_ENABLED=0

func init() {
	transport.SetupFlags()
}

func main() {
	sh.Main()
}
