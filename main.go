// Command robot runs a toy robot command file against a tabletop grid and
// prints every REPORT line to stdout.
//
// Usage:
//
//	robot [options] <command-file>
//
// The grid is 5x5 unless --width/--height or a named --config says otherwise.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/tabletop-robot/game/command"
	"github.com/wricardo/tabletop-robot/game/config"
	"github.com/wricardo/tabletop-robot/game/engine"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	if err := newApp(os.Stdout).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp(stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "robot",
		Usage:     "simulate a toy robot moving on a tabletop",
		ArgsUsage: "<command-file>",
		Writer:    stdout,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "width",
				Value:   engine.DefaultWidth,
				Usage:   "table width in units",
				Sources: cli.EnvVars("ROBOT_GRID_WIDTH"),
			},
			&cli.IntFlag{
				Name:    "height",
				Value:   engine.DefaultHeight,
				Usage:   "table height in units",
				Sources: cli.EnvVars("ROBOT_GRID_HEIGHT"),
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "named grid configuration to load from --config-dir",
			},
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "directory containing grid configurations",
				Sources: cli.EnvVars("ROBOT_CONFIG_DIR"),
			},
			&cli.BoolFlag{
				Name:  "final",
				Usage: "print the final robot position after the script",
			},
			&cli.BoolFlag{
				Name:  "lenient",
				Usage: "ignore unknown commands instead of failing",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "log every operation as it is applied",
			},
		},
		Action: run,
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		fmt.Fprintf(cmd.Writer, "Usage: %s [options] %s\n\n", cmd.Name, cmd.ArgsUsage)
		fmt.Fprintf(cmd.Writer, "Run %s --help for the list of options.\n", cmd.Name)
		return nil
	}

	grid, err := buildGrid(cmd)
	if err != nil {
		return err
	}

	script, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read command file: %w", err)
	}

	opts := []command.Option{command.WithReporter(cmd.Writer)}
	if cmd.Bool("lenient") {
		opts = append(opts, command.WithLenientActions())
	}
	if cmd.Bool("debug") {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
		opts = append(opts, command.WithObserver(logStep))
	}

	final, err := command.New(opts...).Run(grid, string(script))
	if err != nil {
		return err
	}

	if cmd.Bool("final") {
		line, ok, err := final.Report()
		if err != nil {
			return err
		}
		if !ok {
			line = "robot not placed"
		}
		fmt.Fprintf(cmd.Writer, "Final: %s\n", line)
	}
	return nil
}

// buildGrid sizes the table from --config when given. Explicit --width or
// --height flags override the configured dimensions.
func buildGrid(cmd *cli.Command) (*engine.Grid, error) {
	width, height := cmd.Int("width"), cmd.Int("height")

	if name := cmd.String("config"); name != "" {
		manager, err := config.NewManager(cmd.String("config-dir"))
		if err != nil {
			return nil, err
		}
		cfg, err := manager.LoadConfig(name)
		if err != nil {
			return nil, fmt.Errorf("grid config %q: %w", name, err)
		}
		if !cmd.IsSet("width") {
			width = cfg.Width
		}
		if !cmd.IsSet("height") {
			height = cfg.Height
		}
	}

	return engine.NewGrid(width, height)
}

func logStep(s command.Step) {
	status := "ignored"
	if s.Accepted {
		status = "accepted"
	}
	log.Printf("[STEP %d] %s %s -> %s", s.Index, s.Operation, status, describe(s.After))
}

func describe(r *engine.RobotState) string {
	if r == nil {
		return "not placed"
	}
	return fmt.Sprintf("%d,%d,%s", r.X, r.Y, r.Heading)
}
