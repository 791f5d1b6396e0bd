package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/openmetaversefoundation/simian-sub002/pkg/config"
)

var CLI struct {
	Debug bool `help:"Whether to enable debug logging."`

	Serve struct {
		Config string `arg:"" optional:"" name:"config" help:"Configuration file for the simulator." type:"file"`
	} `cmd:"" help:"Start the region simulator."`

	Config struct {
	} `cmd:"" help:"Write the default configuration to standard output."`
}

func writeError(err error) {
	fmt.Fprintf(os.Stderr, "%s\n", err)
	os.Exit(1)
}

func main() {
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	log.Logger = log.Output(consoleWriter)

	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	ctx := kong.Parse(&CLI,
		kong.Name("simian"),
		kong.Description("a virtual world region simulator"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}))

	if CLI.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Warn().Msg("debug logging enabled")
	}

	switch ctx.Command() {
	case "serve":
		fallthrough
	case "serve <config>":
		if err := serve(CLI.Serve.Config); err != nil {
			writeError(err)
		}
	case "config":
		data, err := json.MarshalIndent(config.Default(), "", "  ")
		if err != nil {
			writeError(err)
		}
		os.Stdout.Write(data)
		fmt.Println()
	}
}
