// Package storage archives the files downloaded from the testers, either in a
// local directory or in an S3 bucket. Each file is accompanied by a .stat file.
package storage

import (
	"context"
	"errors"
	"io"

	"github.com/dreitier/testermon/config"
	fs "github.com/dreitier/testermon/storage/fs"
)

var ErrFileNotFound = errors.New("the requested file does not exist")

type Client interface {
	// Store archives content as file of the given tester
	Store(ctx context.Context, tester string, file *fs.FileInfo, content []byte) error
	// GetFileNames lists the archived files of the given tester, sorted by name
	GetFileNames(ctx context.Context, tester string) ([]*fs.FileInfo, error)
	Download(ctx context.Context, tester string, fileName string) (io.ReadCloser, error)
}

func NewClient(cfg *config.ArchiveConfiguration) Client {
	if cfg.IsLocal() {
		return &LocalClient{
			Directory: cfg.Directory,
		}
	}

	return &S3Client{
		Bucket:         cfg.Bucket,
		Prefix:         cfg.Prefix,
		Region:         cfg.Region,
		AccessKey:      cfg.AccessKey,
		SecretKey:      cfg.SecretKey,
		Endpoint:       cfg.Endpoint,
		ForcePathStyle: cfg.ForcePathStyle,
		Token:          cfg.Token,
	}
}
