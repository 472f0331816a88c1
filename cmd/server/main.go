// server runs the BGRS course registration server.
//
//	server [--config configs/config.yaml] [--courses Courses.txt] [--port 7777] [port]
//
// A positional port is accepted as well as --port.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/yigit/bgrs/internal/bootstrap"
	"github.com/yigit/bgrs/internal/pkg/logger"
	"github.com/yigit/bgrs/internal/server"
)

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if err == pflag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	srv, err := server.NewServer(opts)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	// Run blocks until a shutdown signal
	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}

func parseFlags(args []string) (bootstrap.Options, error) {
	var opts bootstrap.Options

	flagSet := pflag.NewFlagSet("server", pflag.ContinueOnError)
	flagSet.StringVarP(&opts.ConfigPath, "config", "c", filepath.Join("configs", "config.yaml"), "path to the YAML config file")
	flagSet.StringVarP(&opts.Port, "port", "p", "", "BGRS listen port (overrides server.port)")
	flagSet.StringVar(&opts.CoursesPath, "courses", "", "course catalog file (overrides catalog.path and selects the file source)")

	if err := flagSet.Parse(args); err != nil {
		return opts, err
	}

	switch rest := flagSet.Args(); len(rest) {
	case 0:
	case 1:
		if opts.Port != "" {
			return opts, fmt.Errorf("port given both as --port and as an argument")
		}
		opts.Port = rest[0]
	default:
		return opts, fmt.Errorf("unexpected arguments: %v", rest[1:])
	}
	return opts, nil
}
