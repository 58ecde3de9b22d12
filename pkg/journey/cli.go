package journey

import (
	"context"
	"fmt"

	"github.com/kr/pretty"
	"github.com/urfave/cli/v2"

	"github.com/ojpilot/ojpilot/pkg/config"
	"github.com/ojpilot/ojpilot/pkg/ojp"
)

func RegisterCLI() *cli.Command {
	commonFlags := []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "path to an optional YAML configuration file",
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "dump the full result instead of the tool JSON",
		},
	}

	tripFlags := append([]cli.Flag{
		&cli.StringFlag{
			Name:  "departure-time",
			Usage: "departure time in ISO-8601, defaults to now",
		},
		&cli.StringSliceFlag{
			Name:  "modes",
			Usage: "restrict results to these modes (train, bus, tram)",
		},
		&cli.IntFlag{
			Name:  "max-results",
			Value: DefaultTripResults,
			Usage: "maximum number of trips to return",
		},
	}, commonFlags...)

	return &cli.Command{
		Name:  "lookup",
		Usage: "One-shot OJP queries from the command line",
		Subcommands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "search for stops, addresses and points of interest",
				ArgsUsage: "<query>",
				Flags: append([]cli.Flag{
					&cli.IntFlag{
						Name:  "max-results",
						Value: 10,
						Usage: "maximum number of locations to return",
					},
				}, commonFlags...),
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return fmt.Errorf("expected exactly one query argument")
					}

					client, err := buildClient(c)
					if err != nil {
						return err
					}

					envelope := client.SearchLocations(context.Background(), c.Args().Get(0), c.Int("max-results"))

					return printEnvelope(c, envelope)
				},
			},
			{
				Name:      "trip",
				Usage:     "plan a trip between two stop point references",
				ArgsUsage: "<origin-ref> <destination-ref>",
				Flags:     tripFlags,
				Action: func(c *cli.Context) error {
					if c.NArg() != 2 {
						return fmt.Errorf("expected origin and destination stop point references")
					}

					client, err := buildClient(c)
					if err != nil {
						return err
					}

					departureTime, err := ojp.ParseDepartureTime(c.String("departure-time"))
					if err != nil {
						return err
					}

					modes, err := ojp.ParseModeParam(c.StringSlice("modes"))
					if err != nil {
						return err
					}

					envelope := client.PlanTrip(context.Background(), ojp.TripParams{
						OriginRef:      c.Args().Get(0),
						DestinationRef: c.Args().Get(1),
						DepartureTime:  departureTime,
						Modes:          modes,
						MaxResults:     c.Int("max-results"),
					})

					return printEnvelope(c, envelope)
				},
			},
			{
				Name:      "plan",
				Usage:     "plan a trip between two place names",
				ArgsUsage: "<origin> <destination>",
				Flags:     tripFlags,
				Action: func(c *cli.Context) error {
					if c.NArg() != 2 {
						return fmt.Errorf("expected origin and destination names")
					}

					client, err := buildClient(c)
					if err != nil {
						return err
					}

					departureTime, err := ojp.ParseDepartureTime(c.String("departure-time"))
					if err != nil {
						return err
					}

					modes, err := ojp.ParseModeParam(c.StringSlice("modes"))
					if err != nil {
						return err
					}

					planner := NewPlanner(client)
					envelope := planner.PlanByName(context.Background(), c.Args().Get(0), c.Args().Get(1), Options{
						DepartureTime: departureTime,
						Modes:         modes,
						MaxResults:    c.Int("max-results"),
					})

					return printEnvelope(c, envelope)
				},
			},
		},
	}
}

func buildClient(c *cli.Context) (*ojp.Client, error) {
	loadedConfig, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	transport := ojp.NewHTTPTransport(loadedConfig.Endpoint, loadedConfig.APIKey, loadedConfig.Timeout())

	return ojp.NewClient(transport, loadedConfig.RequestorRef, nil), nil
}

func printEnvelope(c *cli.Context, envelope ojp.Envelope) error {
	if c.Bool("debug") {
		pretty.Println(envelope)
		return nil
	}

	body, err := envelope.ToolJSON(true)
	if err != nil {
		return err
	}

	fmt.Println(string(body))

	return nil
}
