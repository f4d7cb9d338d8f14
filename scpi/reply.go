package scpi

import (
	"fmt"
	"strconv"
	"strings"
)

// StatusQuery waits for pending operations and drains the error queue
const StatusQuery = "*WAI;ERR:ALL?"

// StatusSeparator splits the error queue between the quoted messages
const StatusSeparator = "\","

// InstrumentError is a single entry of the tester's error queue
type InstrumentError struct {
	Code    int
	Message string
}

func (e InstrumentError) Error() string {
	return fmt.Sprintf("%d, %s", e.Code, e.Message)
}

func (e InstrumentError) IsError() bool {
	return e.Code != 0
}

// SplitList splits a reply on sep. An empty sep falls back to ",".
func SplitList(reply string, sep string) []string {
	if sep == "" {
		sep = ","
	}
	return strings.Split(reply, sep)
}

// Quote encloses s in double quotes as required for string parameters
func Quote(s string) string {
	return `"` + s + `"`
}

// ParseErrorQueue converts the parts of a StatusQuery reply split by
// StatusSeparator, e.g. `-113,"Undefined header` and `0,"No error"`.
func ParseErrorQueue(parts []string) ([]InstrumentError, error) {
	var r []InstrumentError

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		code, message, _ := strings.Cut(part, ",")

		value, err := strconv.Atoi(strings.TrimSpace(code))
		if err != nil {
			return r, fmt.Errorf("invalid error code in %q: %w", part, err)
		}

		r = append(r, InstrumentError{
			Code:    value,
			Message: strings.Trim(strings.TrimSpace(message), `"`),
		})
	}

	return r, nil
}
