/*
Command cardtimeline lays out event cards along a time axis without
overlaps and renders them as SVG.

	cardtimeline layout events.csv --format json
	cardtimeline render events.yaml --config config.yaml -o timeline.svg
	cardtimeline serve --listen :8080
*/
package main

import (
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/dbitech/cardtimeline/internal/cli"
)

func init() {
	log.SetOutput(os.Stderr)
	level := os.Getenv("LOG_LEVEL")
	if level != "" {
		logrusLevel, err := log.ParseLevel(level)
		if err != nil {
			log.Fatal(err)
		}
		log.SetLevel(logrusLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
}

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		log.Error(err)
		os.Exit(cli.GetExitCode(err))
	}
}
