package tester

import (
	"fmt"
	"strings"

	"github.com/dreitier/testermon/scpi"
)

const seqTimestampQuery = "SYS;FORM:READ:DATA ASC;SEQ:EXEC:TST?"

type SequenceResult struct {
	Reply      string   `json:"reply"`
	Timestamps []string `json:"timestamps"`
}

// QuerySeqTimeStamp reads the timestamps recorded during the last sequence run
func (s *Session) QuerySeqTimeStamp() ([]string, error) {
	if !s.connected {
		return nil, scpi.ErrNotConnected
	}

	s.transcript.Infof("--> %s", seqTimestampQuery)

	data, err := s.driver.QueryBlock(seqTimestampQuery)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", seqTimestampQuery, err)
	}

	lines := strings.Split(strings.ToValidUTF8(string(data), "�"), "\n")
	// the reply is newline terminated, the last element is always empty
	lines = lines[:len(lines)-1]

	for i, line := range lines {
		s.transcript.Infof("<-- [%d] %s", i, line)
	}

	return lines, nil
}

// ExecSequence runs cmd as sequence with timestamp recording enabled
func (s *Session) ExecSequence(cmd string) (*SequenceResult, error) {
	reply, err := s.Query("SYS;SEQ:EXEC:IMM:HSN? " + scpi.Quote("SEQ:EXEC:TST:STAT ON;"+cmd))
	if err != nil {
		return nil, err
	}

	timestamps, err := s.QuerySeqTimeStamp()
	if err != nil {
		return &SequenceResult{Reply: reply}, err
	}

	return &SequenceResult{Reply: reply, Timestamps: timestamps}, nil
}
