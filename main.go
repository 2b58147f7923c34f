package main

import (
	"flag"
	"fmt"
	"os"

	"racetrack/internal/analyzer"
	"racetrack/internal/circuit"
	"racetrack/internal/config"
	"racetrack/internal/httpserver"
	"racetrack/internal/registry"
	"racetrack/internal/trackfile"
)

var (
	host       *string
	port       *string
	trackPath  *string
	configPath *string
	addr       string
)

// TODO: per 12-factor rules these should come from env too; KISS for now.
func init() {
	host = flag.String("host", "", "the host ip")
	port = flag.String("port", "8080", "the host port")
	trackPath = flag.String("track", "./track.txt", "path to a circuit file")
	configPath = flag.String("config", "", "path to a constants YAML file; defaults to built-in constants")
	flag.Parse()
	addr = *host + ":" + *port
}

func runApp() error {
	constants := config.Default()
	if *configPath != "" {
		loaded, err := config.FromYAML(*configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		constants = loaded
	}

	f, err := os.Open(*trackPath)
	if err != nil {
		return fmt.Errorf("opening track file: %w", err)
	}
	defer f.Close()

	record, err := trackfile.Parse(f)
	if err != nil {
		return fmt.Errorf("parsing track file: %w", err)
	}

	c, err := circuit.New(record, constants)
	if err != nil {
		return fmt.Errorf("building circuit: %w", err)
	}

	a, err := analyzer.New(c, constants)
	if err != nil {
		return fmt.Errorf("building analyzer: %w", err)
	}
	c.AttachAnalyzer(a)

	reg := registry.Default(constants)

	srv := httpserver.New(addr, record, c, reg)
	return srv.Serve()
}

func main() {
	if err := runApp(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
