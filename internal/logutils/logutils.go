package logutils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// New returns a logger writing to w. pretty selects the human-readable console
// format; otherwise each event is one JSON line.
//
// The level parameter can be one of: trace, debug, info, warn, error, fatal, panic, disabled.
func New(level string, w io.Writer, pretty bool) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, err
	}

	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen, NoColor: w != os.Stderr && w != os.Stdout}
	}

	l := zerolog.New(w).
		With().
		Timestamp().
		Logger().
		Level(lvl)

	return l, nil
}

// Open returns the destination for log output. An empty file means stderr.
// The returned closer is always safe to call.
func Open(file string) (io.Writer, func(), error) {
	closer := func() {}
	if file == "" {
		return os.Stderr, closer, nil
	}

	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return nil, closer, fmt.Errorf("create logs dir: %w", err)
	}

	osFile, err := os.Create(file)
	if err != nil {
		return nil, closer, err
	}
	return osFile, func() { _ = osFile.Close() }, nil
}
