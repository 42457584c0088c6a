package command

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/joeycumines/arbor/internal/bt"
	"github.com/joeycumines/arbor/internal/config"
	"github.com/joeycumines/arbor/internal/demo"
	"github.com/joeycumines/arbor/internal/gobt"
	"github.com/joeycumines/arbor/internal/monitor"
)

// Drivers accepted by the run command's -driver flag.
const (
	DriverTree   = "tree"
	DriverTicker = "ticker"
)

var errTickLimit = errors.New("tick limit reached")

// demoFlags configure the demo robot. Defaults come from the configuration.
type demoFlags struct {
	battery       string
	scanDelay     string
	scriptTimeout string
}

func (f *demoFlags) setupFlags(fs *flag.FlagSet, cfg *config.Config) {
	schema := config.DefaultSchema()
	fs.StringVar(&f.battery, "battery", schema.Resolve(cfg, "demo.battery"), "Initial battery charge, in percent")
	fs.StringVar(&f.scanDelay, "scan-delay", schema.Resolve(cfg, "demo.scan-delay"), "Duration of the asynchronous scan")
	fs.StringVar(&f.scriptTimeout, "script-timeout", schema.Resolve(cfg, "script.timeout"), "Maximum duration of each script call")
}

// build parses the flags and assembles the robot. Leaves that run in the
// background stop when ctx is done.
func (f *demoFlags) build(ctx context.Context, logger *slog.Logger) (*demo.Robot, error) {
	battery, err := config.ParseFloat(f.battery)
	if err != nil {
		return nil, fmt.Errorf("invalid -battery: %w", err)
	}
	scanDelay, err := time.ParseDuration(f.scanDelay)
	if err != nil {
		return nil, fmt.Errorf("invalid -scan-delay: %w", err)
	}
	scriptTimeout, err := time.ParseDuration(f.scriptTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid -script-timeout: %w", err)
	}
	return demo.New(ctx,
		demo.WithLogger(logger),
		demo.WithBattery(battery),
		demo.WithScanDelay(scanDelay),
		demo.WithScriptTimeout(scriptTimeout),
	)
}

// RunCommand runs the demo tree to completion.
type RunCommand struct {
	*BaseCommand
	config *config.Config
	// ctx is the parent context of a run; nil is context.Background().
	ctx context.Context

	logFlags
	demoFlags
	frequency     string
	maxTicks      int
	driver        string
	natsURL       string
	subject       string
	traceEndpoint string
	showIDs       bool
}

// NewRunCommand creates a new run command.
func NewRunCommand(cfg *config.Config) *RunCommand {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return &RunCommand{
		BaseCommand: NewBaseCommand(
			"run",
			"Run the pick-and-place demo tree until it finishes",
			"run [options]",
		),
		config: cfg,
	}
}

// SetupFlags configures the flags for the run command.
func (c *RunCommand) SetupFlags(fs *flag.FlagSet) {
	schema := config.DefaultSchema()
	maxTicks, _ := schema.ResolveInt(c.config, "run.max-ticks")

	c.logFlags.setupFlags(fs)
	c.demoFlags.setupFlags(fs, c.config)
	fs.StringVar(&c.frequency, "frequency", schema.Resolve(c.config, "run.frequency"), "Tick frequency in hertz; 0 ticks once, inf never sleeps")
	fs.IntVar(&c.maxTicks, "max-ticks", maxTicks, "Stop after this many ticks (0 for no limit)")
	fs.StringVar(&c.driver, "driver", schema.Resolve(c.config, "run.driver"), "Tick driver: tree or ticker (go-behaviortree)")
	fs.StringVar(&c.natsURL, "nats", schema.Resolve(c.config, "monitor.nats-url"), "Publish a frame per tick to this NATS server")
	fs.StringVar(&c.subject, "subject", schema.Resolve(c.config, "monitor.subject"), "NATS subject frames are published on")
	fs.StringVar(&c.traceEndpoint, "trace-endpoint", schema.Resolve(c.config, "trace.endpoint"), "Export a span per tick to this OTLP/HTTP endpoint")
	fs.BoolVar(&c.showIDs, "ids", false, "Show node ids in the final tree")
}

// Execute runs the tree.
func (c *RunCommand) Execute(args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 {
		_, _ = fmt.Fprintf(stderr, "unexpected arguments: %v\n", args)
		return fmt.Errorf("unexpected arguments")
	}

	frequency, err := config.ParseFloat(c.frequency)
	if err != nil {
		return fmt.Errorf("invalid -frequency: %w", err)
	}
	if c.driver != DriverTree && c.driver != DriverTicker {
		return fmt.Errorf("invalid -driver %q: expected %s or %s", c.driver, DriverTree, DriverTicker)
	}

	logger, closer, err := c.logFlags.open(c.config, stderr)
	if err != nil {
		return err
	}
	defer closer.Close()

	parent := c.ctx
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt)
	defer stop()
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	robot, err := c.demoFlags.build(ctx, logger)
	if err != nil {
		return err
	}

	var opts []bt.TreeOption
	if c.natsURL != "" {
		conn, err := monitor.Connect(ctx, monitor.DefaultConnectionConfig(c.natsURL), logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := monitor.Close(conn); err != nil {
				logger.Warn("[Run] close NATS connection", "error", err)
			}
		}()
		opts = append(opts, bt.WithObserver(monitor.NewPublisher(conn, c.subject, demo.Name, robot.Root, logger)))
		logger.Info("[Run] publishing frames", "url", c.natsURL, "subject", c.subject)
	}
	if c.traceEndpoint != "" {
		tracer, shutdown, err := c.setupTracing(ctx, logger)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				logger.Warn("[Run] tracing shutdown", "error", err)
			}
		}()
		opts = append(opts, bt.WithObserver(tracer))
	}
	if c.maxTicks > 0 {
		limit := uint64(c.maxTicks)
		opts = append(opts, bt.WithObserver(bt.ObserverFunc(func(event bt.TickEvent) {
			if event.Seq >= limit && !event.Status.IsDone() {
				cancel(errTickLimit)
			}
		})))
	}

	tree := robot.Tree(opts...)
	var status bt.Status
	switch c.driver {
	case DriverTicker:
		period, perr := tickerPeriod(frequency)
		if perr != nil {
			return perr
		}
		status, err = gobt.Run(ctx, tree, period)
	default:
		status, err = tree.RunContext(ctx, frequency)
	}

	limited := errors.Is(context.Cause(ctx), errTickLimit)
	if err != nil && !limited {
		return fmt.Errorf("run interrupted after %d ticks: %w", tree.Ticks(), err)
	}

	_, _ = fmt.Fprintf(stdout, "%s finished: %s after %d ticks\n", demo.Name, status, tree.Ticks())
	if limited {
		_, _ = fmt.Fprintf(stdout, "stopped: %v\n", errTickLimit)
	}
	out, err := monitor.Render(monitor.Snapshot(robot.Root), monitor.RenderOptions{ShowIDs: c.showIDs})
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(stdout, out)
	if report, err := robot.World.String(demo.KeyReport); err == nil {
		_, _ = fmt.Fprintf(stdout, "report: %s\n", report)
	}

	if status == bt.Failed {
		return fmt.Errorf("%s failed", demo.Name)
	}
	return nil
}

func (c *RunCommand) setupTracing(ctx context.Context, logger *slog.Logger) (*monitor.Tracer, func(context.Context) error, error) {
	cfg := monitor.DefaultTracingConfig("arbor")
	cfg.OTLPEndpoint = c.traceEndpoint
	ratio, err := config.DefaultSchema().ResolveFloat(c.config, "trace.sample-ratio")
	if err != nil {
		return nil, nil, err
	}
	cfg.SampleRatio = ratio
	shutdown, err := monitor.SetupTracing(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return monitor.NewTracer(nil, demo.Name), shutdown, nil
}

// tickerPeriod converts a frequency in hertz to the period of a
// go-behaviortree ticker, which requires a positive duration.
func tickerPeriod(frequency float64) (time.Duration, error) {
	switch {
	case math.IsInf(frequency, 1):
		return time.Microsecond, nil
	case frequency <= 0 || math.IsNaN(frequency):
		return 0, fmt.Errorf("the %s driver requires a positive frequency, got %s", DriverTicker, strconv.FormatFloat(frequency, 'g', -1, 64))
	}
	return max(time.Duration(float64(time.Second)/frequency), time.Nanosecond), nil
}
