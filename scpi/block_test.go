package scpi

import (
	"bufio"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadBlock(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		input    string
		want     string
		wantRest string
		wantErr  error
	}{
		{name: "definite", input: "#15hello\n", want: "hello"},
		{name: "definite with crlf", input: "#15hello\r\nnext", want: "hello", wantRest: "next"},
		{name: "payload with newlines", input: "#213a\nb\nc\n\n12345\n", want: "a\nb\nc\n\n12345"},
		{name: "no terminator", input: "#13abc", want: "abc"},
		{name: "following data is kept", input: "#13abcX", want: "abc", wantRest: "X"},
		{name: "empty block", input: "#10\n", want: ""},
		{name: "indefinite", input: "#0free text\r\n", want: "free text"},
		{name: "missing marker", input: "15hello\n", wantErr: ErrMalformedBlock},
		{name: "invalid digit", input: "#x5hello\n", wantErr: ErrMalformedBlock},
		{name: "invalid length", input: "#2a5hello\n", wantErr: ErrMalformedBlock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := bufio.NewReader(strings.NewReader(tt.input))
			got, err := readBlock(r)

			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.want, string(got))

			rest, _ := r.ReadString(0)
			assert.Equal(t, tt.wantRest, rest)
		})
	}
}

func TestReadBlock_Truncated(t *testing.T) {
	t.Parallel()

	_, err := readBlock(bufio.NewReader(strings.NewReader("#210abc")))

	assert.Error(t, err)
}

func TestEncodeBlock(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "#15hello", string(EncodeBlock([]byte("hello"))))
	assert.Equal(t, "#10", string(EncodeBlock(nil)))
	assert.Equal(t, "#3100"+strings.Repeat("x", 100), string(EncodeBlock([]byte(strings.Repeat("x", 100)))))

	decoded, err := readBlock(bufio.NewReader(strings.NewReader(string(EncodeBlock([]byte{0, 1, '\n', 255})))))
	assert.NoError(t, err)
	assert.Equal(t, []byte{0, 1, '\n', 255}, decoded)
}
