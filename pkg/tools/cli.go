package tools

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/ojpilot/ojpilot/pkg/config"
	"github.com/ojpilot/ojpilot/pkg/journey"
	"github.com/ojpilot/ojpilot/pkg/ojp"
	"github.com/ojpilot/ojpilot/pkg/stats"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Provides the MCP tool server for AI assistants",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run the MCP server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "transport",
						Value: "stdio",
						Usage: "MCP transport, either stdio or http",
					},
					&cli.StringFlag{
						Name:  "listen",
						Value: ":8765",
						Usage: "listen target for the http transport",
					},
					&cli.StringFlag{
						Name:  "config",
						Usage: "path to an optional YAML configuration file",
					},
				},
				Action: func(c *cli.Context) error {
					transport := c.String("transport")
					if transport != "stdio" && transport != "http" {
						return fmt.Errorf("unknown transport %q, expected stdio or http", transport)
					}

					if transport == "stdio" && os.Getenv("OJPILOT_LOG_FORMAT") != "JSON" {
						// stdout carries the MCP stream, so console logs
						// move to stderr.
						log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
					}

					loadedConfig, err := config.Load(c.String("config"))
					if err != nil {
						return err
					}

					collector := stats.NewCollector()

					httpTransport := ojp.NewHTTPTransport(loadedConfig.Endpoint, loadedConfig.APIKey, loadedConfig.Timeout())
					httpTransport.Collector = collector

					client := ojp.NewClient(httpTransport, loadedConfig.RequestorRef, collector)
					toolServer := NewServer(client, journey.NewPlanner(client))

					if transport == "http" {
						return toolServer.RunHTTP(c.String("listen"))
					}

					return toolServer.RunStdio()
				},
			},
		},
	}
}
