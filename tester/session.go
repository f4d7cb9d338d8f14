// Package tester wraps the SCPI connection to a single tester: commands and
// queries are written to the session's transcript, replies are split into
// their fields and files are fetched from the tester's filesystem.
package tester

import (
	"strings"
	"time"

	"github.com/dreitier/testermon/scpi"
	"github.com/dreitier/testermon/transcript"
)

const (
	DefaultTimeout          = 5 * time.Second
	DefaultTimeLimit        = 3 * time.Second
	DefaultListingThreshold = 1024 * 1024 * 1024
)

// Session owns one driver connection. It is not safe for concurrent use.
type Session struct {
	driver  scpi.Driver
	address string
	timeout time.Duration

	// queries taking longer are reported in the transcript
	timeLimit time.Duration
	// the file listing is only logged if less space is left
	listingThreshold uint64
	binaryExtensions map[string]struct{}

	transcript *transcript.Transcript
	observer   Observer
	clock      func() time.Time

	connected bool
}

type Option func(*Session)

func WithTimeout(timeout time.Duration) Option {
	return func(s *Session) {
		s.timeout = timeout
	}
}

func WithTimeLimit(limit time.Duration) Option {
	return func(s *Session) {
		s.timeLimit = limit
	}
}

func WithListingThreshold(bytes uint64) Option {
	return func(s *Session) {
		s.listingThreshold = bytes
	}
}

// WithBinaryExtensions replaces the extensions downloaded in binary mode, e.g. ".iqvsa"
func WithBinaryExtensions(extensions ...string) Option {
	return func(s *Session) {
		s.binaryExtensions = make(map[string]struct{}, len(extensions))
		for _, ext := range extensions {
			s.binaryExtensions[normalizeExtension(ext)] = struct{}{}
		}
	}
}

func WithTranscript(t *transcript.Transcript) Option {
	return func(s *Session) {
		s.transcript = t
	}
}

func WithObserver(o Observer) Option {
	return func(s *Session) {
		s.observer = o
	}
}

// New connects to the tester at address. A failed connection is logged and
// leaves the session disconnected; it is neither retried nor returned.
func New(driver scpi.Driver, address string, opts ...Option) *Session {
	s := &Session{
		driver:           driver,
		address:          address,
		timeout:          DefaultTimeout,
		timeLimit:        DefaultTimeLimit,
		listingThreshold: DefaultListingThreshold,
		observer:         nopObserver{},
		clock:            time.Now,
	}

	WithBinaryExtensions(".iqvsa")(s)

	for _, opt := range opts {
		opt(s)
	}

	if s.transcript == nil {
		s.transcript = transcript.New(address)
	}

	if err := s.driver.Connect(address, s.timeout); err != nil {
		s.transcript.Infof("Failed to connect tester %s", address)
		s.transcript.Debugf("%s", err)
		s.observer.Connected(false)
		return s
	}

	s.connected = true
	s.observer.Connected(true)
	s.transcript.Infof("Connected to tester %s", address)

	return s
}

func (s *Session) Address() string {
	return s.address
}

func (s *Session) Connected() bool {
	return s.connected
}

func (s *Session) Transcript() *transcript.Transcript {
	return s.transcript
}

// Disconnect closes the connection; it does nothing on a disconnected session.
// The observer keeps the outcome of the connection attempt.
func (s *Session) Disconnect() error {
	if !s.connected {
		return nil
	}

	s.connected = false

	return s.driver.Disconnect()
}

func normalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
