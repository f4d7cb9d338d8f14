package scpi

import (
	"bufio"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// DefaultPort is the raw SCPI socket port of most LAN instruments
const DefaultPort = 5025

// SocketDriver speaks SCPI over a raw TCP socket. Commands and replies are
// terminated by a newline.
type SocketDriver struct {
	conn    net.Conn
	reader  *bufio.Reader
	dialer  *net.Dialer
	port    int
	timeout time.Duration

	binAsChar bool
}

type SocketOption func(*SocketDriver)

// WithDialer sets a custom net.Dialer, e.g. to bind a source address
func WithDialer(dialer *net.Dialer) SocketOption {
	return func(d *SocketDriver) {
		d.dialer = dialer
	}
}

// WithPort changes the port used for addresses without one
func WithPort(port int) SocketOption {
	return func(d *SocketDriver) {
		d.port = port
	}
}

func NewSocketDriver(opts ...SocketOption) *SocketDriver {
	d := &SocketDriver{
		dialer:    &net.Dialer{},
		port:      DefaultPort,
		binAsChar: true,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// NewSocketDriverFromConn wraps an already established connection
func NewSocketDriverFromConn(conn net.Conn, timeout time.Duration) *SocketDriver {
	d := NewSocketDriver()
	d.attach(conn, timeout)

	return d
}

// Connect dials address; the configured port is appended if address has none
func (d *SocketDriver) Connect(address string, timeout time.Duration) error {
	if d.conn != nil {
		_ = d.Disconnect()
	}

	target := address
	if _, _, err := net.SplitHostPort(address); err != nil {
		target = net.JoinHostPort(address, strconv.Itoa(d.port))
	}

	d.dialer.Timeout = timeout

	conn, err := d.dialer.Dial("tcp", target)
	if err != nil {
		return errors.Wrapf(err, "failed to connect to %s", target)
	}

	d.attach(conn, timeout)
	log.Debugf("Connected to SCPI socket %s", target)

	return nil
}

func (d *SocketDriver) attach(conn net.Conn, timeout time.Duration) {
	d.conn = conn
	d.reader = bufio.NewReader(conn)
	d.timeout = timeout
}

func (d *SocketDriver) Disconnect() error {
	if d.conn == nil {
		return nil
	}

	err := d.conn.Close()
	d.conn = nil
	d.reader = nil

	if err != nil {
		return errors.Wrap(err, "failed to close connection")
	}

	return nil
}

func (d *SocketDriver) SetBinAsChar(enabled bool) {
	d.binAsChar = enabled
}

func (d *SocketDriver) Exec(cmd string) error {
	return d.write(cmd)
}

// QueryString returns a single reply line. A block reply is unwrapped into its
// characters while bin-as-char is enabled, otherwise its raw encoding is returned.
func (d *SocketDriver) QueryString(cmd string) (string, error) {
	if err := d.write(cmd); err != nil {
		return "", err
	}

	if err := d.setReadDeadline(); err != nil {
		return "", err
	}

	if d.isBlockReply() {
		data, err := readBlock(d.reader)
		if err != nil {
			return "", errors.Wrapf(err, "failed to read reply to %q", cmd)
		}

		if d.binAsChar {
			return string(data), nil
		}

		return string(EncodeBlock(data)), nil
	}

	line, err := d.reader.ReadString('\n')
	if err != nil {
		return "", errors.Wrapf(err, "failed to read reply to %q", cmd)
	}

	log.Debugf("scpi reply: %q", line)

	return strings.TrimRight(line, "\r\n"), nil
}

// QueryBlock returns the payload of a block reply. Replies which are not
// formatted as block are returned as line including the newline.
func (d *SocketDriver) QueryBlock(cmd string) ([]byte, error) {
	if err := d.write(cmd); err != nil {
		return nil, err
	}

	if err := d.setReadDeadline(); err != nil {
		return nil, err
	}

	if d.isBlockReply() {
		data, err := readBlock(d.reader)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read block reply to %q", cmd)
		}

		log.Debugf("scpi block reply: %d bytes", len(data))

		return data, nil
	}

	line, err := d.reader.ReadBytes('\n')
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read reply to %q", cmd)
	}

	return line, nil
}

func (d *SocketDriver) isBlockReply() bool {
	first, err := d.reader.Peek(1)
	return err == nil && first[0] == blockMarker
}

func (d *SocketDriver) write(cmd string) error {
	if d.conn == nil {
		return ErrNotConnected
	}

	log.Debugf("scpi command: %s", cmd)

	if d.timeout > 0 {
		if err := d.conn.SetWriteDeadline(time.Now().Add(d.timeout)); err != nil {
			return errors.Wrap(err, "failed to set write deadline")
		}
	}

	if _, err := d.conn.Write([]byte(cmd + "\n")); err != nil {
		return errors.Wrapf(err, "failed to send %q", cmd)
	}

	return nil
}

func (d *SocketDriver) setReadDeadline() error {
	if d.timeout <= 0 {
		return nil
	}

	if err := d.conn.SetReadDeadline(time.Now().Add(d.timeout)); err != nil {
		return errors.Wrap(err, "failed to set read deadline")
	}

	return nil
}
