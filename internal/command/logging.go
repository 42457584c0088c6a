package command

import (
	"flag"
	"io"
	"log/slog"

	"github.com/joeycumines/arbor/internal/config"
	"github.com/joeycumines/arbor/internal/logging"
)

// logFlags holds the logging flags shared by tree-running commands. Empty
// values defer to the configuration.
type logFlags struct {
	level  string
	file   string
	format string
}

func (f *logFlags) setupFlags(fs *flag.FlagSet) {
	fs.StringVar(&f.level, "log-level", "", "Log level: debug, info, warn or error (default from log.level)")
	fs.StringVar(&f.file, "log-file", "", "Write logs to a rotating file instead of stderr (default from log.file)")
	fs.StringVar(&f.format, "log-format", "", "Log format: text or json (default from log.format)")
}

// open resolves the flags against cfg and builds the logger. The caller must
// close the returned closer.
func (f *logFlags) open(cfg *config.Config, stderr io.Writer) (*slog.Logger, io.Closer, error) {
	opts, err := logging.Resolve(f.level, f.file, f.format, cfg)
	if err != nil {
		return nil, nil, err
	}
	return logging.New(opts, stderr)
}
