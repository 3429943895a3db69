package onvifevents

import (
	"fmt"
	"os"
	"path/filepath"

	"go.viam.com/rdk/logging"
)

// Artifact file names, one per flow. Each run overwrites its file.
const (
	DeclaredEventsFile = "onviflist.xml"
	SentEventsFile     = "sentonviflist.xml"
)

// Sink persists response bodies to the artifact files, pretty-printed when
// the formatter succeeds and raw otherwise.
type Sink struct {
	dir       string
	formatter Formatter
	logger    logging.Logger
}

// NewSink writes artifacts under dir. A nil formatter disables
// pretty-printing entirely.
func NewSink(dir string, formatter Formatter, logger logging.Logger) *Sink {
	return &Sink{dir: dir, formatter: formatter, logger: logger}
}

// WriteDeclared stores a GetEventPropertiesResponse body.
func (s *Sink) WriteDeclared(body string) error {
	return s.write(body, filepath.Join(s.dir, DeclaredEventsFile))
}

// WriteSent stores a PullMessagesResponse body.
func (s *Sink) WriteSent(body string) error {
	return s.write(body, filepath.Join(s.dir, SentEventsFile))
}

func (s *Sink) write(body, path string) error {
	out := body
	if s.formatter != nil {
		formatted, err := s.formatter.Format(body)
		if err != nil {
			s.logger.Warnf("%v; writing raw response to %s instead", &FormattingError{Err: err}, path)
		} else {
			out = formatted
		}
	}
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	s.logger.Infof("wrote %s", path)
	return nil
}
