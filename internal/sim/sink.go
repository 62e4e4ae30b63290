package sim

import (
	"io"

	"the-game/internal/protocol"

	"github.com/sirupsen/logrus"
)

// EventSink receives simulation events. Implementations must be safe for
// concurrent use since games run in parallel.
type EventSink interface {
	Publish(ev protocol.Event)
}

// SinkFunc adapts a function to EventSink.
type SinkFunc func(ev protocol.Event)

func (f SinkFunc) Publish(ev protocol.Event) { f(ev) }

// MultiSink fans every event out to each sink in order.
type MultiSink []EventSink

func (m MultiSink) Publish(ev protocol.Event) {
	for _, s := range m {
		if s != nil {
			s.Publish(ev)
		}
	}
}

type discardSink struct{}

func (discardSink) Publish(protocol.Event) {}

// LogSink writes one JSON line per event.
type LogSink struct {
	logger *logrus.Logger
}

// NewLogSink returns a sink writing JSON log entries to w.
func NewLogSink(w io.Writer) *LogSink {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(logrus.InfoLevel)
	logger.SetFormatter(&logrus.JSONFormatter{})
	return &LogSink{logger: logger}
}

func (s *LogSink) Publish(ev protocol.Event) {
	s.logger.WithFields(logrus.Fields{
		"game_event": ev.Type,
		"run_id":     ev.RunID,
		"body":       ev.Payload,
	}).Info(ev.Type)
}
