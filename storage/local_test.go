package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dreitier/testermon/config"
	fs "github.com/dreitier/testermon/storage/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	local := NewClient(&config.ArchiveConfiguration{Directory: "/var/lib/testermon"})
	assert.Equal(t, &LocalClient{Directory: "/var/lib/testermon"}, local)

	s3 := NewClient(&config.ArchiveConfiguration{Bucket: "archive", Prefix: "lab", Region: "eu-central-1"})
	assert.IsType(t, &S3Client{}, s3)
	assert.Equal(t, "archive", s3.(*S3Client).Bucket)
}

func TestLocalClient_StoreAndList(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	sut := &LocalClient{Directory: t.TempDir()}

	downloadedAt := time.Unix(1667829327, 0)
	archivedAt := time.Unix(1667829330, 0)

	require.NoError(t, sut.Store(ctx, "bench-1", &fs.FileInfo{
		Name:         "log.txt",
		Source:       "Log",
		Size:         5,
		Mode:         "text",
		DownloadedAt: downloadedAt,
		ArchivedAt:   archivedAt,
	}, []byte("hello")))
	require.NoError(t, sut.Store(ctx, "bench-1", &fs.FileInfo{Name: "capture.iqvsa", Mode: "binary"}, []byte{0, 1}))

	assert.FileExists(filepath.Join(sut.Directory, "bench-1", "log.txt.stat"))

	files, err := sut.GetFileNames(ctx, "bench-1")

	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal("capture.iqvsa", files[0].Name)
	assert.Equal(int64(2), files[0].Size)
	assert.Equal("binary", files[0].Mode)
	assert.Equal(&fs.FileInfo{
		Name:         "log.txt",
		Source:       "Log",
		Size:         5,
		Mode:         "text",
		DownloadedAt: downloadedAt,
		ArchivedAt:   archivedAt,
	}, files[1])
}

func TestLocalClient_GetFileNames_unknownTester(t *testing.T) {
	sut := &LocalClient{Directory: t.TempDir()}

	files, err := sut.GetFileNames(context.Background(), "bench-2")

	assert.NoError(t, err)
	assert.Empty(t, files)
}

func TestLocalClient_Download(t *testing.T) {
	ctx := context.Background()
	sut := &LocalClient{Directory: t.TempDir()}
	require.NoError(t, sut.Store(ctx, "bench-1", &fs.FileInfo{Name: "log.txt"}, []byte("hello")))

	r, err := sut.Download(ctx, "bench-1", "log.txt")
	require.NoError(t, err)
	defer r.Close()

	content, err := io.ReadAll(r)
	assert.NoError(t, err)
	assert.Equal(t, "hello", string(content))

	_, err = sut.Download(ctx, "bench-1", "missing.txt")
	assert.ErrorIs(t, err, ErrFileNotFound)

	_, err = sut.Download(ctx, "bench-1", "log.txt.stat")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestLocalClient_rejectsPathTraversal(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	sut := &LocalClient{Directory: filepath.Join(root, "archive")}

	err := sut.Store(ctx, "..", &fs.FileInfo{Name: "x"}, nil)
	assert.Error(t, err)

	err = sut.Store(ctx, "bench-1", &fs.FileInfo{Name: "../../x"}, nil)
	assert.Error(t, err)

	_, err = sut.Download(ctx, "bench-1", "../secret")
	assert.Error(t, err)

	_, statErr := os.Stat(filepath.Join(root, "x"))
	assert.True(t, os.IsNotExist(statErr))
}
