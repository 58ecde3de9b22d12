package api

import (
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/ojpilot/ojpilot/pkg/config"
	"github.com/ojpilot/ojpilot/pkg/journey"
	"github.com/ojpilot/ojpilot/pkg/ojp"
	"github.com/ojpilot/ojpilot/pkg/stats"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "web-api",
		Usage: "Provides the core web API",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run web api server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Value: ":8080",
						Usage: "listen target for the web server",
					},
					&cli.StringFlag{
						Name:  "config",
						Usage: "path to an optional YAML configuration file",
					},
				},
				Action: func(c *cli.Context) error {
					loadedConfig, err := config.Load(c.String("config"))
					if err != nil {
						return err
					}

					collector := stats.NewCollector()

					httpTransport := ojp.NewHTTPTransport(loadedConfig.Endpoint, loadedConfig.APIKey, loadedConfig.Timeout())
					httpTransport.Collector = collector

					client := ojp.NewClient(httpTransport, loadedConfig.RequestorRef, collector)

					log.Info().Str("listen", c.String("listen")).Msg("Starting web api server")

					return SetupServer(c.String("listen"), client, journey.NewPlanner(client))
				},
			},
		},
	}
}
