// Package transcript records the conversation with a single tester.
//
// Every line is appended to an optional log file and echoed to the console:
//
//	2022-11-07 13:55:27.123 [INFO] [192.168.100.254]	--> SYS;*IDN?
package transcript

import (
	"io"
	"os"

	log "github.com/sirupsen/logrus"
)

type Transcript struct {
	logger  *log.Logger
	address string
	path    string
}

type Option func(*Transcript)

// WithFile appends every line to path. An empty path disables the file.
func WithFile(path string) Option {
	return func(t *Transcript) {
		t.path = path
	}
}

// WithConsole echoes every line to w instead of standard output
func WithConsole(w io.Writer) Option {
	return func(t *Transcript) {
		t.logger.SetOutput(w)
	}
}

func WithoutConsole() Option {
	return WithConsole(io.Discard)
}

func WithLevel(level log.Level) Option {
	return func(t *Transcript) {
		t.logger.SetLevel(level)
	}
}

func New(address string, opts ...Option) *Transcript {
	formatter := &Formatter{Address: address}

	logger := log.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(formatter)
	logger.SetLevel(log.DebugLevel)

	t := &Transcript{logger: logger, address: address}

	for _, opt := range opts {
		opt(t)
	}

	if t.path != "" {
		logger.AddHook(&FileHook{Path: t.path, Formatter: formatter})
	}

	return t
}

func (t *Transcript) Address() string {
	return t.address
}

// Path of the transcript file, empty if the transcript is console only
func (t *Transcript) Path() string {
	return t.path
}

func (t *Transcript) Debugf(format string, args ...interface{}) {
	t.logger.Debugf(format, args...)
}

func (t *Transcript) Infof(format string, args ...interface{}) {
	t.logger.Infof(format, args...)
}

func (t *Transcript) Warnf(format string, args ...interface{}) {
	t.logger.Warnf(format, args...)
}

func (t *Transcript) Errorf(format string, args ...interface{}) {
	t.logger.Errorf(format, args...)
}
