package tester

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dreitier/testermon/scpi"
)

// Send executes cmd without reading a reply
func (s *Session) Send(cmd string) error {
	if !s.connected {
		return scpi.ErrNotConnected
	}

	s.transcript.Infof("--> %s", cmd)

	if err := s.driver.Exec(cmd); err != nil {
		return fmt.Errorf("send %q: %w", cmd, err)
	}

	return nil
}

// Query returns the textual reply to cmd
func (s *Session) Query(cmd string) (string, error) {
	if !s.connected {
		return "", scpi.ErrNotConnected
	}

	started := s.clock()

	s.transcript.Infof("--> %s", cmd)
	reply, err := s.driver.QueryString(cmd)
	if err != nil {
		return "", fmt.Errorf("query %q: %w", cmd, err)
	}
	s.transcript.Infof("<-- %s", reply)

	s.checkElapsed(cmd, started)

	return reply, nil
}

// QueryList splits the reply to cmd on sep (default ",") and logs every field
func (s *Session) QueryList(cmd string, sep string) ([]string, error) {
	if !s.connected {
		return nil, scpi.ErrNotConnected
	}

	s.transcript.Infof("--> %s", cmd)
	reply, err := s.driver.QueryString(cmd)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", cmd, err)
	}

	fields := scpi.SplitList(reply, sep)
	for i, field := range fields {
		s.transcript.Infof("<-- [%d] %s", i, field)
	}

	return fields, nil
}

// QueryStatus drains the error queue. label names the operation the elapsed time is reported for.
func (s *Session) QueryStatus(label string) ([]string, error) {
	if label == "" {
		label = scpi.StatusQuery
	}

	started := s.clock()

	fields, err := s.QueryList(scpi.StatusQuery, scpi.StatusSeparator)
	if err != nil {
		return nil, err
	}

	s.checkElapsed(label, started)

	return fields, nil
}

// SendAndQuery sends cmd and reads the error queue afterwards. Entries with a
// non-zero code are logged as warning.
func (s *Session) SendAndQuery(cmd string) ([]scpi.InstrumentError, error) {
	if err := s.Send(cmd); err != nil {
		return nil, err
	}

	fields, err := s.QueryStatus(cmd)
	if err != nil {
		return nil, err
	}

	queue, err := scpi.ParseErrorQueue(fields)
	if err != nil {
		s.transcript.Warnf("Unparsable error queue after %s: %s", cmd, err)
		return queue, nil
	}

	for _, entry := range queue {
		if entry.IsError() {
			s.transcript.Warnf("%s caused %s", cmd, entry.Error())
		}
	}

	return queue, nil
}

// Errors reads and parses the error queue
func (s *Session) Errors() ([]scpi.InstrumentError, error) {
	fields, err := s.QueryStatus("")
	if err != nil {
		return nil, err
	}

	return scpi.ParseErrorQueue(fields)
}

// QueryInt interprets the first comma separated field of the reply as integer
func (s *Session) QueryInt(cmd string) (int, error) {
	reply, err := s.Query(cmd)
	if err != nil {
		return 0, err
	}

	first, _, _ := strings.Cut(reply, ",")

	value, err := strconv.Atoi(strings.TrimSpace(first))
	if err != nil {
		return 0, fmt.Errorf("reply to %q is not an integer: %q", cmd, reply)
	}

	return value, nil
}

func (s *Session) checkElapsed(label string, started time.Time) {
	elapsed := s.clock().Sub(started)
	slow := s.timeLimit > 0 && elapsed > s.timeLimit

	if slow {
		s.transcript.Errorf("%.3fs for %s", elapsed.Seconds(), label)
	}

	s.observer.QueryCompleted(label, elapsed, slow)
}
