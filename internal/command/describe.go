package command

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/joeycumines/arbor/internal/config"
	"github.com/joeycumines/arbor/internal/demo"
	"github.com/joeycumines/arbor/internal/monitor"
)

// Formats accepted by the describe command's -format flag.
const (
	FormatTree = "tree"
	FormatJSON = "json"
)

// DescribeCommand prints the structure of the demo tree, optionally after
// ticking it a number of times.
type DescribeCommand struct {
	*BaseCommand
	config *config.Config

	logFlags
	demoFlags
	format  string
	showIDs bool
	ticks   int
}

// NewDescribeCommand creates a new describe command.
func NewDescribeCommand(cfg *config.Config) *DescribeCommand {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return &DescribeCommand{
		BaseCommand: NewBaseCommand(
			"describe",
			"Print the demo tree as a terminal tree or JSON frame",
			"describe [options]",
		),
		config: cfg,
	}
}

// SetupFlags configures the flags for the describe command.
func (c *DescribeCommand) SetupFlags(fs *flag.FlagSet) {
	schema := config.DefaultSchema()
	showIDs, _ := config.ParseBool(schema.ResolveCommand(c.config, c.Name(), "ids"))

	c.logFlags.setupFlags(fs)
	c.demoFlags.setupFlags(fs, c.config)
	fs.StringVar(&c.format, "format", schema.ResolveCommand(c.config, c.Name(), "format"), "Output format: tree or json")
	fs.BoolVar(&c.showIDs, "ids", showIDs, "Show node ids (tree format)")
	fs.IntVar(&c.ticks, "ticks", 0, "Tick the tree this many times before describing it")
}

// Execute describes the tree.
func (c *DescribeCommand) Execute(args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 {
		_, _ = fmt.Fprintf(stderr, "unexpected arguments: %v\n", args)
		return fmt.Errorf("unexpected arguments")
	}
	if c.format != FormatTree && c.format != FormatJSON {
		return fmt.Errorf("invalid -format %q: expected %s or %s", c.format, FormatTree, FormatJSON)
	}
	if c.ticks < 0 {
		return fmt.Errorf("invalid -ticks %d: must not be negative", c.ticks)
	}

	logger, closer, err := c.logFlags.open(c.config, stderr)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	robot, err := c.demoFlags.build(ctx, logger)
	if err != nil {
		return err
	}

	tree := robot.Tree()
	frame := monitor.Frame{
		Tree:   demo.Name,
		Status: robot.Root.Status(),
		Time:   time.Now(),
	}
	for range c.ticks {
		started := time.Now()
		frame.Status = tree.Tick()
		frame.Time, frame.Elapsed = started, time.Since(started)
		if frame.Status.IsDone() {
			break
		}
	}
	frame.Seq = tree.Ticks()
	frame.Nodes = monitor.Snapshot(robot.Root)

	if c.format == FormatJSON {
		data, err := monitor.Encode(frame)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(stdout, string(data))
		return nil
	}

	out, err := monitor.RenderFrame(frame, monitor.RenderOptions{ShowIDs: c.showIDs})
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(stdout, out)
	return nil
}
