package framework

import (
	"log/slog"
	"time"
)

// TestLogger receives lifecycle events for every test that Run visits, including skipped ones.
type TestLogger interface {
	TestStarted(id TestID)
	TestError(id TestID, err error)
	TestFinished(id TestID, failed bool, debugOutput CapturedOutput)
	TestSkipped(id TestID, reason string)
}

type nullTestLogger struct{}

func (n nullTestLogger) TestStarted(TestID)                        {}
func (n nullTestLogger) TestError(TestID, error)                   {}
func (n nullTestLogger) TestFinished(TestID, bool, CapturedOutput) {}
func (n nullTestLogger) TestSkipped(TestID, string)                {}

type multiTestLogger []TestLogger

// MultiTestLogger forwards every event to each of the given loggers in order. Nil entries are
// ignored.
func MultiTestLogger(loggers ...TestLogger) TestLogger {
	var ret multiTestLogger
	for _, l := range loggers {
		if l != nil {
			ret = append(ret, l)
		}
	}
	if len(ret) == 0 {
		return nullTestLogger{}
	}
	return ret
}

func (m multiTestLogger) TestStarted(id TestID) {
	for _, l := range m {
		l.TestStarted(id)
	}
}

func (m multiTestLogger) TestError(id TestID, err error) {
	for _, l := range m {
		l.TestError(id, err)
	}
}

func (m multiTestLogger) TestFinished(id TestID, failed bool, debugOutput CapturedOutput) {
	for _, l := range m {
		l.TestFinished(id, failed, debugOutput)
	}
}

func (m multiTestLogger) TestSkipped(id TestID, reason string) {
	for _, l := range m {
		l.TestSkipped(id, reason)
	}
}

// SlogTestLogger reports test events as structured log records at debug level, with the
// elapsed time of each test.
type SlogTestLogger struct {
	Logger  *slog.Logger
	started map[string]time.Time
}

func NewSlogTestLogger(logger *slog.Logger) *SlogTestLogger {
	return &SlogTestLogger{Logger: logger, started: make(map[string]time.Time)}
}

func (s *SlogTestLogger) TestStarted(id TestID) {
	s.started[id.String()] = time.Now()
	s.Logger.Debug("test started", "test", id.String())
}

func (s *SlogTestLogger) TestError(id TestID, err error) {
	s.Logger.Debug("test error", "test", id.String(), "error", reformatError(err))
}

func (s *SlogTestLogger) TestFinished(id TestID, failed bool, debugOutput CapturedOutput) {
	attrs := []interface{}{"test", id.String(), "failed", failed, "debug_lines", len(debugOutput)}
	if t, ok := s.started[id.String()]; ok {
		attrs = append(attrs, "duration", time.Since(t))
		delete(s.started, id.String())
	}
	s.Logger.Debug("test finished", attrs...)
}

func (s *SlogTestLogger) TestSkipped(id TestID, reason string) {
	s.Logger.Debug("test skipped", "test", id.String(), "reason", reason)
}
