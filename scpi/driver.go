// Package scpi talks to a tester's SCPI command interface.
//
// Driver mirrors the connection object of the instrument vendor: plain commands
// are executed, string queries return one textual reply and block queries return
// the payload of an IEEE 488.2 arbitrary block.
package scpi

//go:generate mockgen -package mock -destination mock/driver.go github.com/dreitier/testermon/scpi Driver

import (
	"errors"
	"time"
)

var (
	ErrNotConnected   = errors.New("scpi: not connected")
	ErrMalformedBlock = errors.New("scpi: malformed block")
)

type Driver interface {
	Connect(address string, timeout time.Duration) error
	Disconnect() error
	// Exec sends a command without waiting for a reply
	Exec(cmd string) error
	// QueryString sends a query and returns its textual reply without terminator
	QueryString(cmd string) (string, error)
	// QueryBlock sends a query and returns the raw reply payload
	QueryBlock(cmd string) ([]byte, error)
	// SetBinAsChar controls whether block replies to QueryString are unwrapped into characters
	SetBinAsChar(enabled bool)
}
