package tester

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dreitier/testermon/scpi"
)

type TransferMode int

const (
	// Text transfers open the file on the tester and read it as characters
	Text TransferMode = iota
	// Binary transfers fetch the file as raw block
	Binary
)

func (m TransferMode) String() string {
	if m == Binary {
		return "binary"
	}
	return "text"
}

func (m TransferMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *TransferMode) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "binary":
		*m = Binary
	case "text":
		*m = Text
	default:
		return fmt.Errorf("unknown transfer mode %q", text)
	}
	return nil
}

// TransferModeFor selects Binary for the given extensions and Text for
// everything else, including files without extension.
func TransferModeFor(fileName string, binaryExtensions map[string]struct{}) TransferMode {
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == "" {
		return Text
	}

	if _, ok := binaryExtensions[ext]; ok {
		return Binary
	}

	return Text
}

// Download describes the outcome of DownloadFile
type Download struct {
	Name      string       `json:"name"`
	Directory string       `json:"directory"`
	LocalPath string       `json:"local_path"`
	Mode      TransferMode `json:"mode"`
	Size      int          `json:"size"`
	// false if the file does not exist on the tester
	Found bool `json:"found"`
}

// TransferMode returns the mode DownloadFile uses for fileName
func (s *Session) TransferMode(fileName string) TransferMode {
	return TransferModeFor(fileName, s.binaryExtensions)
}

// DownloadFile copies fileName from directory fileDir of the tester into
// dstDir, which is created if absent. A file missing on the tester is logged
// and reported through Download.Found; it is not an error. fileName must be a
// plain name so that the copy stays inside dstDir.
func (s *Session) DownloadFile(fileName string, fileDir string, dstDir string) (r *Download, err error) {
	if !isPlainFileName(fileName) {
		return nil, fmt.Errorf("illegal file name %#q", fileName)
	}

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dstDir, err)
	}

	if err := s.changeDirectory(fileDir); err != nil {
		return nil, err
	}

	// go back to the root directory in any case
	defer func() {
		if restoreErr := s.changeDirectory(""); restoreErr != nil && err == nil {
			err = restoreErr
		}
	}()

	exist, err := s.QueryInt("SYS;MMEM:FEX? " + scpi.Quote(fileName))
	if err != nil {
		return nil, err
	}

	r = &Download{
		Name:      fileName,
		Directory: fileDir,
		Mode:      s.TransferMode(fileName),
	}

	if exist != 1 {
		s.transcript.Errorf("%s not found", fileName)
		return r, nil
	}

	var content []byte

	switch r.Mode {
	case Binary:
		content, err = s.readBinary(fileName)
	default:
		content, err = s.readText(fileName)
	}

	if err != nil {
		return nil, err
	}

	r.Found = true
	r.Size = len(content)
	r.LocalPath = filepath.Join(dstDir, fileName)

	if err := os.WriteFile(r.LocalPath, content, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", r.LocalPath, err)
	}

	s.observer.FileDownloaded(r.Mode, r.Size)

	return r, nil
}

func (s *Session) readBinary(fileName string) ([]byte, error) {
	cmd := "SYS;MMEM:DATA? " + scpi.Quote(fileName)

	s.driver.SetBinAsChar(false)
	s.transcript.Infof("--> %s", cmd)

	data, err := s.driver.QueryBlock(cmd)
	if err != nil {
		return nil, fmt.Errorf("query %q: %w", cmd, err)
	}

	s.transcript.Infof("<-- %d bytes", len(data))

	return data, nil
}

func (s *Session) readText(fileName string) ([]byte, error) {
	s.driver.SetBinAsChar(true)

	if err := s.Send("SYS;MMEM:FOP " + scpi.Quote(fileName) + `,"r"`); err != nil {
		return nil, err
	}

	content, err := s.Query("SYS;MMEM:FRE?")
	if err != nil {
		return nil, err
	}

	if err := s.Send("SYS;MMEM:FCL"); err != nil {
		return nil, err
	}

	return []byte(content), nil
}

// changeDirectory switches to dir relative to the root of the tester's filesystem
func (s *Session) changeDirectory(dir string) error {
	_, err := s.SendAndQuery("SYS;MMEM:CDIR " + scpi.Quote(`\`+dir))
	return err
}

func isPlainFileName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}
