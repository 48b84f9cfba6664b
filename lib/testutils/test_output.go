package testutils

import (
	"testing"

	"github.com/sirupsen/logrus"
)

// testOutput routes log lines to the test runner so they show up attached to
// the failing test instead of interleaved on stderr.
type testOutput struct{ t testing.TB }

func (to testOutput) Write(p []byte) (n int, err error) {
	to.t.Logf("%s", p)
	return len(p), nil
}

// NewTestOutput returns an io.Writer that writes to the test runner's log.
func NewTestOutput(t testing.TB) testOutput {
	return testOutput{t}
}

// NewLogger returns a new logrus.Logger that writes all log messages to the
// given test runner's log at debug level.
func NewLogger(t testing.TB) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(NewTestOutput(t))
	l.SetLevel(logrus.DebugLevel)
	return l
}
