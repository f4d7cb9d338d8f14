package fs

// Common data structures for archived files. As S3 objects are also files, we are using our own filesystem abstraction.
import (
	"errors"
	"os"
	"time"
)

// FileInfo contains information about a file downloaded from a tester
type FileInfo struct {
	// File name
	Name string `json:"name"`
	// Directory on the tester the file has been downloaded from
	Source string `json:"source,omitempty"`
	Size   int64  `json:"size"`
	// Transfer mode of the download, "text" or "binary"
	Mode string `json:"mode,omitempty"`
	// When has the file been read from the tester?
	DownloadedAt time.Time `json:"downloaded_at"`
	// When has the file been copied to the archive? Without .stat file this is the modification time in the archive.
	ArchivedAt time.Time `json:"archived_at"`
}

// IsFilePathValid reports whether path exists. Errors other than a missing path are returned.
func IsFilePathValid(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}
