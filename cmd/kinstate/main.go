// Package main runs the robot state layer against a simulated joint source and prints every
// published state as a JSON line.
package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	goutils "go.viam.com/utils"

	"go.viam.com/kinstate/config"
	"go.viam.com/kinstate/kinematics"
	"go.viam.com/kinstate/logging"
	"go.viam.com/kinstate/publisher"
	"go.viam.com/kinstate/referenceframe"
	"go.viam.com/kinstate/robothw"
	"go.viam.com/kinstate/robotstate/fake"
)

const (
	// Flags.
	flagURDF      = "urdf"
	flagConfig    = "config"
	flagCycleRate = "cycle-rate"
	flagDuration  = "duration"
	flagMotion    = "motion-frequency"
	flagDebug     = "debug"
)

func main() {
	if err := newApp(os.Stdout, os.Stderr).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// newApp writes published states to out and log lines to logs, keeping out a pure JSON lines
// stream.
func newApp(out io.Writer, logs *os.File) *cli.App {
	return &cli.App{
		Name:  "kinstate",
		Usage: "compute and publish kinematic and dynamic robot state",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "run",
				Usage:     "drive the control cycle from a simulated joint source",
				UsageText: "kinstate run --urdf <file> [--config <file>] [--cycle-rate <hz>] [--duration <d>]",
				Flags: []cli.Flag{
					&cli.PathFlag{
						Name:     flagURDF,
						Required: true,
						Usage:    "robot description `FILE`",
					},
					&cli.PathFlag{
						Name:    flagConfig,
						Aliases: []string{"c"},
						Usage:   "load configuration from `FILE`",
					},
					&cli.Float64Flag{
						Name:  flagCycleRate,
						Value: 1000,
						Usage: "control cycles per second",
					},
					&cli.DurationFlag{
						Name:  flagDuration,
						Usage: "stop after this long, zero runs until interrupted",
					},
					&cli.Float64Flag{
						Name:  flagMotion,
						Value: 0.2,
						Usage: "oscillation frequency of the simulated joints in Hz",
					},
				},
				Action: func(c *cli.Context) error {
					return runAction(c, out, logs)
				},
			},
		},
	}
}

func runAction(c *cli.Context, out io.Writer, logs *os.File) error {
	logger := logging.NewBlankLogger("kinstate")
	logger.AddAppender(logging.NewFileAppender(logs))
	if !c.Bool(flagDebug) {
		logger.SetLevel(logging.INFO)
	}

	conf := config.Default()
	if path := c.Path(flagConfig); path != "" {
		var err error
		if conf, err = config.Read(path); err != nil {
			return err
		}
	}
	conf.RobotDescription = c.Path(flagURDF)

	cycleRate := c.Float64(flagCycleRate)
	if cycleRate <= 0 {
		return errors.Errorf("--%s must be positive, got %v", flagCycleRate, cycleRate)
	}

	tree, err := referenceframe.ParseURDFFile(conf.RobotDescription)
	if err != nil {
		return err
	}
	segments, err := tree.ChainBetween(conf.RootName, conf.TipName)
	if err != nil {
		return errors.Wrapf(err, "cannot resolve %q to %q", conf.RootName, conf.TipName)
	}
	chain, err := kinematics.NewChain(conf.RootName, conf.TipName, segments)
	if err != nil {
		return err
	}

	clk := clock.New()
	source := fake.NewJointSource(chain.Limits(), c.Float64(flagMotion), clk)
	hw, err := robothw.New(conf, tree, source, publisher.NewWriterSink(out), clk, logger)
	if err != nil {
		return err
	}
	defer goutils.UncheckedErrorFunc(hw.Close)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()
	if d := c.Duration(flagDuration); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	return runCycles(ctx, hw, clk, time.Duration(float64(time.Second)/cycleRate), logger)
}

// runCycles calls Read once per period until ctx is done.
func runCycles(ctx context.Context, hw *robothw.RobotHW, clk clock.Clock, period time.Duration, logger logging.Logger) error {
	ticker := clk.Ticker(period)
	defer ticker.Stop()

	var cycles, failures uint64
	for goutils.SelectContextOrWaitChan(ctx, ticker.C) {
		cycles++
		if err := hw.Read(); err != nil {
			failures++
			if failures == 1 {
				logger.Warnw("control cycle failed", "error", err)
			}
		}
	}
	stats := hw.PublisherStats()
	logger.Infow("stopped",
		"cycles", cycles,
		"failed_cycles", failures,
		"published", stats.Published,
		"dropped", stats.Dropped,
		"send_errors", stats.SendErrors,
	)
	return nil
}
