package scpi

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

const blockMarker = '#'

// EncodeBlock wraps data into a definite length block, e.g. "#15hello"
func EncodeBlock(data []byte) []byte {
	length := strconv.Itoa(len(data))
	header := fmt.Sprintf("%c%d%s", blockMarker, len(length), length)

	return append([]byte(header), data...)
}

// readBlock reads a definite length block (#<n><length><data>) or an indefinite
// one (#0<data>\n) and consumes the reply terminator.
func readBlock(r *bufio.Reader) ([]byte, error) {
	marker, err := r.ReadByte()
	if err != nil {
		return nil, err
	}

	if marker != blockMarker {
		return nil, errors.Wrapf(ErrMalformedBlock, "expected %q, got %q", blockMarker, marker)
	}

	digits, err := r.ReadByte()
	if err != nil {
		return nil, err
	}

	if digits < '0' || digits > '9' {
		return nil, errors.Wrapf(ErrMalformedBlock, "invalid length digit %q", digits)
	}

	if digits == '0' {
		data, err := r.ReadBytes('\n')
		if err != nil {
			return nil, err
		}
		return trimTerminator(data), nil
	}

	header := make([]byte, int(digits-'0'))
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, errors.Wrap(err, "failed to read block length")
	}

	length, err := strconv.Atoi(string(header))
	if err != nil || length < 0 {
		return nil, errors.Wrapf(ErrMalformedBlock, "invalid block length %q", header)
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, errors.Wrapf(err, "failed to read %d bytes of block data", length)
	}

	consumeTerminator(r)

	return data, nil
}

func consumeTerminator(r *bufio.Reader) {
	b, err := r.ReadByte()
	if err != nil {
		return
	}

	if b == '\r' {
		b, err = r.ReadByte()
		if err != nil {
			return
		}
	}

	if b != '\n' {
		_ = r.UnreadByte()
	}
}

func trimTerminator(data []byte) []byte {
	n := len(data)
	if n > 0 && data[n-1] == '\n' {
		n--
	}
	if n > 0 && data[n-1] == '\r' {
		n--
	}
	return data[:n]
}
