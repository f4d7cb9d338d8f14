package transcript

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
)

// FileHook appends every entry to Path. The file is opened and closed per entry.
type FileHook struct {
	Path      string
	Formatter log.Formatter
}

func (h *FileHook) Levels() []log.Level {
	return log.AllLevels
}

func (h *FileHook) Fire(entry *log.Entry) error {
	line, err := h.Formatter.Format(entry)
	if err != nil {
		return err
	}

	file, err := os.OpenFile(h.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open transcript %s: %w", h.Path, err)
	}

	_, err = file.Write(line)
	closeErr := file.Close()

	if err != nil {
		return fmt.Errorf("failed to append to transcript %s: %w", h.Path, err)
	}

	return closeErr
}
