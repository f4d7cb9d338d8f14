package tester

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dreitier/testermon/scpi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func Test_TransferModeFor(t *testing.T) {
	binary := map[string]struct{}{".iqvsa": {}, ".bin": {}}

	tests := []struct {
		name     string
		expected TransferMode
	}{
		{"capture.iqvsa", Binary},
		{"CAPTURE.IQVSA", Binary},
		{"firmware.bin", Binary},
		{"log.txt", Text},
		{"README", Text},
		{"archive.iqvsa.txt", Text},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TransferModeFor(tt.name, binary))
		})
	}
}

func Test_TransferMode_String(t *testing.T) {
	assert.Equal(t, "binary", Binary.String())
	assert.Equal(t, "text", Text.String())

	text, err := Binary.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "binary", string(text))

	var mode TransferMode
	require.NoError(t, mode.UnmarshalText([]byte("binary")))
	assert.Equal(t, Binary, mode)
	assert.Error(t, mode.UnmarshalText([]byte("ascii")))
}

func TestSession_WithBinaryExtensionsIsNormalized(t *testing.T) {
	sut, _, _ := newConnectedSession(t, WithBinaryExtensions("BIN", " .Dat "))

	assert.Equal(t, Binary, sut.TransferMode("x.bin"))
	assert.Equal(t, Binary, sut.TransferMode("x.dat"))
	assert.Equal(t, Text, sut.TransferMode("x.iqvsa"))
}

func TestSession_DownloadFile_binary(t *testing.T) {
	observer := &recordingObserver{}
	sut, driver, console := newConnectedSession(t, WithObserver(observer))
	dst := filepath.Join(t.TempDir(), "downloads")
	payload := []byte{0x00, 0x0a, 0xff, 0x23}

	gomock.InOrder(
		driver.EXPECT().Exec(`SYS;MMEM:CDIR "\User"`).Return(nil),
		driver.EXPECT().QueryString(scpi.StatusQuery).Return(`0,"No error"`, nil),
		driver.EXPECT().QueryString(`SYS;MMEM:FEX? "capture.iqvsa"`).Return("1", nil),
		driver.EXPECT().SetBinAsChar(false),
		driver.EXPECT().QueryBlock(`SYS;MMEM:DATA? "capture.iqvsa"`).Return(payload, nil),
		driver.EXPECT().Exec(`SYS;MMEM:CDIR "\"`).Return(nil),
		driver.EXPECT().QueryString(scpi.StatusQuery).Return(`0,"No error"`, nil),
	)

	r, err := sut.DownloadFile("capture.iqvsa", "User", dst)

	require.NoError(t, err)
	assert.True(t, r.Found)
	assert.Equal(t, Binary, r.Mode)
	assert.Equal(t, 4, r.Size)
	assert.Equal(t, filepath.Join(dst, "capture.iqvsa"), r.LocalPath)

	content, err := os.ReadFile(r.LocalPath)
	require.NoError(t, err)
	assert.Equal(t, payload, content)

	assert.Equal(t, []TransferMode{Binary}, observer.downloads)
	assert.Contains(t, messages(console), `--> SYS;MMEM:DATA? "capture.iqvsa"`)
	assert.Contains(t, messages(console), "<-- 4 bytes")
}

func TestSession_DownloadFile_text(t *testing.T) {
	sut, driver, _ := newConnectedSession(t)
	dst := t.TempDir()

	gomock.InOrder(
		driver.EXPECT().Exec(`SYS;MMEM:CDIR "\Log"`).Return(nil),
		driver.EXPECT().QueryString(scpi.StatusQuery).Return(`0,"No error"`, nil),
		driver.EXPECT().QueryString(`SYS;MMEM:FEX? "log.txt"`).Return("1", nil),
		driver.EXPECT().SetBinAsChar(true),
		driver.EXPECT().Exec(`SYS;MMEM:FOP "log.txt","r"`).Return(nil),
		driver.EXPECT().QueryString("SYS;MMEM:FRE?").Return("line 1\nline 2", nil),
		driver.EXPECT().Exec("SYS;MMEM:FCL").Return(nil),
		driver.EXPECT().Exec(`SYS;MMEM:CDIR "\"`).Return(nil),
		driver.EXPECT().QueryString(scpi.StatusQuery).Return(`0,"No error"`, nil),
	)

	r, err := sut.DownloadFile("log.txt", "Log", dst)

	require.NoError(t, err)
	assert.Equal(t, Text, r.Mode)

	content, err := os.ReadFile(filepath.Join(dst, "log.txt"))
	require.NoError(t, err)
	assert.Equal(t, "line 1\nline 2", string(content))
}

func TestSession_DownloadFile_notFound(t *testing.T) {
	observer := &recordingObserver{}
	sut, driver, console := newConnectedSession(t, WithObserver(observer))
	dst := t.TempDir()

	gomock.InOrder(
		driver.EXPECT().Exec(`SYS;MMEM:CDIR "\User"`).Return(nil),
		driver.EXPECT().QueryString(scpi.StatusQuery).Return(`0,"No error"`, nil),
		driver.EXPECT().QueryString(`SYS;MMEM:FEX? "missing.txt"`).Return("0", nil),
		driver.EXPECT().Exec(`SYS;MMEM:CDIR "\"`).Return(nil),
		driver.EXPECT().QueryString(scpi.StatusQuery).Return(`0,"No error"`, nil),
	)

	r, err := sut.DownloadFile("missing.txt", "User", dst)

	require.NoError(t, err)
	assert.False(t, r.Found)
	assert.Empty(t, observer.downloads)
	assert.Contains(t, console.String(), "[ERROR] [192.168.100.254]\tmissing.txt not found")
	assert.NoFileExists(t, filepath.Join(dst, "missing.txt"))
}

func TestSession_DownloadFile_rejectsNamesOutsideDestination(t *testing.T) {
	sut, _, _ := newConnectedSession(t)
	base := t.TempDir()
	dst := filepath.Join(base, "dst")

	for _, name := range []string{"../escaped.txt", `..\escaped.txt`, "Log/log.txt", "..", ".", ""} {
		t.Run(name, func(t *testing.T) {
			r, err := sut.DownloadFile(name, "User", dst)

			assert.ErrorContains(t, err, "illegal file name")
			assert.Nil(t, r)
		})
	}

	assert.NoFileExists(t, filepath.Join(base, "escaped.txt"))
	assert.NoDirExists(t, dst)
}
