package config

import (
	"net"
	"strconv"
	"time"
)

type TesterConfiguration struct {
	Name              string
	Address           string
	Port              int
	Timeout           time.Duration
	LogFile           string
	DownloadDirectory string
	BinaryExtensions  []string
	Downloads         []*DownloadConfiguration
}

// Endpoint returns host:port of the tester's SCPI socket
func (t *TesterConfiguration) Endpoint() string {
	return net.JoinHostPort(t.Address, strconv.Itoa(t.Port))
}

// DownloadConfiguration describes which files of a tester directory are fetched by the monitor
type DownloadConfiguration struct {
	// directory on the tester, relative to its filesystem root
	Directory string
	// cron expression; empty means on every refresh
	Schedule string
	// explicit file names, used instead of Filter if present
	Files  []string
	Filter *FilesConfiguration
}

// ArchiveConfiguration is either a local Directory or an S3 bucket
type ArchiveConfiguration struct {
	Directory      string
	Bucket         string
	Prefix         string
	Region         string
	AccessKey      string
	SecretKey      string
	Endpoint       string
	ForcePathStyle bool
	Token          string
}

func (a *ArchiveConfiguration) IsLocal() bool {
	return a.Directory != ""
}
