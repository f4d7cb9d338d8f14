package cmd

import (
	"bufio"
	"bytes"
	"net"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dreitier/testermon/scpi"
	"github.com/dreitier/testermon/tester"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serveInstrument answers every known command with its reply until the test ends
func serveInstrument(t *testing.T, replies map[string]string) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = listener.Close() })

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}

			go func(conn net.Conn) {
				defer conn.Close()
				reader := bufio.NewReader(conn)

				for {
					line, err := reader.ReadString('\n')
					if err != nil {
						return
					}

					if reply, ok := replies[strings.TrimRight(line, "\r\n")]; ok {
						_, _ = conn.Write([]byte(reply))
					}
				}
			}(conn)
		}
	}()

	return listener.Addr().String()
}

func executeCommand(t *testing.T, args ...string) (stdout string, stderr string, err error) {
	t.Helper()

	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}

	flagConfig = filepath.Join(t.TempDir(), "missing.yaml")

	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	rootCmd.SetArgs(args)

	t.Cleanup(func() {
		flagConfig, flagTester, flagAddress, flagLog = "", "", "", ""
		flagDebug, flagQuiet, flagJson, flagList, flagNoStatus = false, false, false, false, false
		flagSeparator = ","
		flagDirectory, flagDestination = "", ""
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err = rootCmd.Execute()

	return out.String(), errOut.String(), err
}

func TestQueryCommand(t *testing.T) {
	address := serveInstrument(t, map[string]string{
		"SYS;*IDN?": "LitePoint,IQxel-MW,SN1234,1.4.0\n",
	})

	stdout, stderr, err := executeCommand(t, "query", "--address", address, "SYS;*IDN?")

	assert.NoError(t, err)
	assert.Equal(t, "LitePoint,IQxel-MW,SN1234,1.4.0\n", stdout)
	assert.Contains(t, stderr, "--> SYS;*IDN?")
	assert.Contains(t, stderr, "<-- LitePoint,IQxel-MW,SN1234,1.4.0")
}

func TestQueryCommand_List(t *testing.T) {
	address := serveInstrument(t, map[string]string{
		"SYS;*IDN?": "LitePoint,IQxel-MW,SN1234,1.4.0\n",
	})

	stdout, _, err := executeCommand(t, "query", "-a", address, "--list", "--quiet", "SYS;*IDN?")

	assert.NoError(t, err)
	assert.Equal(t, "LitePoint\nIQxel-MW\nSN1234\n1.4.0\n", stdout)
}

func TestSendCommand_ReportsErrorQueue(t *testing.T) {
	address := serveInstrument(t, map[string]string{
		scpi.StatusQuery: "-113,\"Undefined header\",0,\"No error\"\n",
	})

	stdout, _, err := executeCommand(t, "send", "-a", address, "-q", "SYS;SEQ:DEL")

	assert.EqualError(t, err, "1 command(s) caused an error")
	assert.Equal(t, "SYS;SEQ:DEL: -113, Undefined header\n", stdout)
}

func TestQueryCommand_UnreachableTester(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	address := listener.Addr().String()
	require.NoError(t, listener.Close())

	_, stderr, err := executeCommand(t, "query", "-a", address, "SYS;*IDN?")

	assert.ErrorIs(t, err, scpi.ErrNotConnected)
	assert.Contains(t, stderr, "Failed to connect tester "+address)
}

func TestCommands_RequireTester(t *testing.T) {
	_, _, err := executeCommand(t, "errors")

	assert.EqualError(t, err, "no tester selected, use --tester or --address")
}

func TestVersionCommand(t *testing.T) {
	rootCmd.Version = "1.0.0"

	stdout, _, err := executeCommand(t, "version")

	assert.NoError(t, err)
	assert.Equal(t, "testermon 1.0.0\n", stdout)
}

func TestPrintCatalog(t *testing.T) {
	out := &bytes.Buffer{}

	err := printCatalog(out, &tester.Catalog{
		UsedBytes: 2 * 1024 * 1024,
		FreeBytes: 1024 * 1024 * 1024,
		Entries: []tester.CatalogEntry{
			{Name: "User", Type: "DIR", Size: 0},
			{Name: "capture.iqvsa", Type: "FILE", Size: 2048},
		},
	})

	assert.NoError(t, err)
	assert.Equal(t, "NAME            TYPE   SIZE\n"+
		"User            DIR    -\n"+
		"capture.iqvsa   FILE   2K\n"+
		"\n2M used, 1G free\n", out.String())
}

func TestPrintErrorQueue(t *testing.T) {
	out := &bytes.Buffer{}

	assert.Equal(t, 0, printErrorQueue(out, "*RST", []scpi.InstrumentError{{Code: 0, Message: "No error"}}))
	assert.Empty(t, out.String())

	assert.Equal(t, 1, printErrorQueue(out, "*RST", []scpi.InstrumentError{
		{Code: -113, Message: "Undefined header"},
		{Code: -200, Message: "Execution error"},
		{Code: 0, Message: "No error"},
	}))
	assert.Equal(t, "*RST: -113, Undefined header; -200, Execution error\n", out.String())
}

func TestKeyAction(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want action
	}{
		{"r", "r", actionRefresh},
		{"ctrl+r", "\x12", actionRefresh},
		{"q", "q", actionExit},
		{"esc", "\x1b", actionExit},
		{"ctrl+c", "\x03", actionExit},
		{"other", "x", actionNone},
		{"escape sequence", "\x1b[A", actionNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, keyAction([]byte(tt.raw)))
		})
	}
}
