package command

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/joeycumines/arbor/internal/bt"
	"github.com/joeycumines/arbor/internal/config"
	"github.com/joeycumines/arbor/internal/demo"
	"github.com/joeycumines/arbor/internal/monitor"
)

// frameBuffer is the number of frames buffered between a source and the
// display.
const frameBuffer = 64

// WatchCommand displays frames live, either received over NATS or produced
// by running the demo tree in-process.
type WatchCommand struct {
	*BaseCommand
	config *config.Config
	// ctx is the parent context; nil is context.Background().
	ctx context.Context
	// input overrides the terminal input of the interactive display.
	input io.Reader

	logFlags
	demoFlags
	natsURL   string
	subject   string
	frequency string
	showIDs   bool
	plain     bool
}

// NewWatchCommand creates a new watch command.
func NewWatchCommand(cfg *config.Config) *WatchCommand {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return &WatchCommand{
		BaseCommand: NewBaseCommand(
			"watch",
			"Watch a tree tick live, over NATS or by running the demo",
			"watch [options]",
		),
		config: cfg,
	}
}

// SetupFlags configures the flags for the watch command.
func (c *WatchCommand) SetupFlags(fs *flag.FlagSet) {
	schema := config.DefaultSchema()
	showIDs, _ := config.ParseBool(schema.ResolveCommand(c.config, c.Name(), "ids"))

	c.logFlags.setupFlags(fs)
	c.demoFlags.setupFlags(fs, c.config)
	fs.StringVar(&c.natsURL, "nats", schema.Resolve(c.config, "monitor.nats-url"), "Receive frames from this NATS server; empty runs the demo in-process")
	fs.StringVar(&c.subject, "subject", schema.Resolve(c.config, "monitor.subject"), "NATS subject to receive frames on")
	fs.StringVar(&c.frequency, "frequency", schema.Resolve(c.config, "run.frequency"), "Tick frequency of the in-process demo, in hertz")
	fs.BoolVar(&c.showIDs, "ids", showIDs, "Show node ids")
	fs.BoolVar(&c.plain, "plain", false, "Print each frame instead of starting the interactive display")
}

// Execute watches frames until the source ends (plain mode) or the user
// quits.
func (c *WatchCommand) Execute(args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 {
		_, _ = fmt.Fprintf(stderr, "unexpected arguments: %v\n", args)
		return fmt.Errorf("unexpected arguments")
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
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
	}()

	frames := make(chan monitor.Frame, frameBuffer)
	if c.natsURL != "" {
		conn, err := monitor.Connect(ctx, monitor.DefaultConnectionConfig(c.natsURL), logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := monitor.Close(conn); err != nil {
				logger.Warn("[Watch] close NATS connection", "error", err)
			}
		}()
		sub, err := monitor.Subscribe(conn, c.subject, func(frame monitor.Frame) {
			offerFrame(frames, frame, logger)
		}, logger)
		if err != nil {
			return err
		}
		defer func() { _ = sub.Unsubscribe() }()
		logger.Info("[Watch] subscribed", "url", c.natsURL, "subject", c.subject)
	} else {
		frequency, err := config.ParseFloat(c.frequency)
		if err != nil {
			return fmt.Errorf("invalid -frequency: %w", err)
		}
		robot, err := c.demoFlags.build(ctx, logger)
		if err != nil {
			return err
		}
		wg.Go(func() { runLocal(ctx, robot, frequency, frames, logger) })
	}

	opts := monitor.RenderOptions{ShowIDs: c.showIDs}
	if c.plain {
		return printFrames(ctx, frames, opts, stdout)
	}

	programOpts := []tea.ProgramOption{tea.WithOutput(stdout)}
	if c.input != nil {
		programOpts = append(programOpts, tea.WithInput(c.input))
	}
	program := tea.NewProgram(monitor.NewWatchModel(frames, opts), programOpts...)
	wg.Go(func() {
		<-ctx.Done()
		program.Quit()
	})
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("watch display: %w", err)
	}
	return nil
}

// runLocal runs the demo, sending a frame per tick, and closes frames when
// the tree finishes or ctx is done.
func runLocal(ctx context.Context, robot *demo.Robot, frequency float64, frames chan<- monitor.Frame, logger *slog.Logger) {
	defer close(frames)
	tree := robot.Tree(bt.WithObserver(bt.ObserverFunc(func(event bt.TickEvent) {
		select {
		case frames <- monitor.NewFrame(demo.Name, robot.Root, event):
		case <-ctx.Done():
		}
	})))
	if frequency <= 0 {
		frequency = 1
	}
	status, err := tree.RunContext(ctx, frequency)
	if err != nil {
		logger.Debug("[Watch] local run stopped", "error", err)
		return
	}
	logger.Info("[Watch] local run finished", "status", status.String(), "ticks", tree.Ticks())
}

// offerFrame sends frame without blocking, dropping it when the display has
// fallen behind.
func offerFrame(frames chan<- monitor.Frame, frame monitor.Frame, logger *slog.Logger) {
	select {
	case frames <- frame:
	default:
		logger.Warn("[Watch] display behind, dropped frame", "tree", frame.Tree, "seq", frame.Seq)
	}
}

// printFrames writes each frame until frames is closed or ctx is done.
func printFrames(ctx context.Context, frames <-chan monitor.Frame, opts monitor.RenderOptions, w io.Writer) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case frame, ok := <-frames:
			if !ok {
				return nil
			}
			out, err := monitor.RenderFrame(frame, opts)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(w, out)
		}
	}
}
