package mixer

import (
	"io"
	"os"

	"github.com/op/go-logging"
)

var Logger = logging.MustGetLogger("mixer")

var fileFormat = logging.MustStringFormatter(
	`%{time:15:04:05.000} %{level:.4s} %{message}`,
)
var consoleFormat = logging.MustStringFormatter(
	`%{color}%{time:15:04:05.000} %{level:.4s}%{color:reset} %{message}`,
)

// ConfigureLogger writes everything to file and, unless a dashboard owns the
// terminal, to stdout as well
func ConfigureLogger(file io.Writer, level logging.Level, console bool) {
	backends := []logging.Backend{}
	if file != nil {
		fileBackend := logging.NewLogBackend(file, "", 0)
		backends = append(backends, logging.NewBackendFormatter(fileBackend, fileFormat))
	}
	if console {
		consoleBackend := logging.NewLogBackend(os.Stdout, "", 0)
		backends = append(backends, logging.NewBackendFormatter(consoleBackend, consoleFormat))
	}
	if len(backends) == 0 {
		backends = append(backends, logging.NewLogBackend(io.Discard, "", 0))
	}
	leveled := logging.SetBackend(backends...)
	leveled.SetLevel(level, "")
}

func GetLogger() *logging.Logger {
	return Logger
}
