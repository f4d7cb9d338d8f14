package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	fs "github.com/dreitier/testermon/storage/fs"
	dotstat "github.com/dreitier/testermon/storage/fs/dotstat"
	log "github.com/sirupsen/logrus"
)

// LocalClient keeps the files of each tester in a sub directory of Directory
type LocalClient struct {
	Directory string
}

func (c *LocalClient) Store(_ context.Context, tester string, file *fs.FileInfo, content []byte) error {
	target, err := c.pathOf(tester, file.Name)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create archive directory: %s", err)
	}

	if err := os.WriteFile(target, content, 0o644); err != nil {
		return fmt.Errorf("failed to archive %s: %s", file.Name, err)
	}

	stat, err := dotstat.Marshal(file)
	if err != nil {
		return err
	}

	if err := os.WriteFile(dotstat.ToDotStatPath(target), stat, 0o644); err != nil {
		return fmt.Errorf("failed to write stat file of %s: %s", file.Name, err)
	}

	log.Debugf("Archived %s of tester %s at %s", file.Name, tester, target)

	return nil
}

func (c *LocalClient) GetFileNames(_ context.Context, tester string) ([]*fs.FileInfo, error) {
	directory, err := c.pathOf(tester, "")
	if err != nil {
		return nil, err
	}

	exists, err := fs.IsFilePathValid(directory)
	if err != nil {
		return nil, fmt.Errorf("failed to check directory %s: %w", directory, err)
	}

	if !exists {
		// nothing archived yet
		return nil, nil
	}

	dirEntries, err := os.ReadDir(directory)
	if err != nil {
		log.Errorf("Failed to scan directory %s, %v", directory, err)
		return nil, err
	}

	var files []*fs.FileInfo
	dotStatContents := make(map[string][]byte)

	for _, dirEntry := range dirEntries {
		if dirEntry.IsDir() {
			continue
		}

		if dotstat.IsStatFile(dirEntry.Name()) {
			buf, err := os.ReadFile(filepath.Join(directory, dirEntry.Name()))
			if err != nil {
				log.Warnf("Unable to read stat file %s: %s", dirEntry.Name(), err)
				continue
			}

			dotStatContents[dotstat.RemoveDotStatSuffix(dirEntry.Name())] = buf
			continue
		}

		info, err := dirEntry.Info()
		if err != nil {
			log.Warnf("Unable to stat %s: %s", dirEntry.Name(), err)
			continue
		}

		files = append(files, &fs.FileInfo{
			Name:       dirEntry.Name(),
			Size:       info.Size(),
			ArchivedAt: info.ModTime(),
		})
	}

	dotstat.ApplyDotStatValues(dotStatContents, files)

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})

	return files, nil
}

func (c *LocalClient) Download(_ context.Context, tester string, fileName string) (io.ReadCloser, error) {
	if dotstat.IsStatFile(fileName) {
		return nil, ErrFileNotFound
	}

	path, err := c.pathOf(tester, fileName)
	if err != nil {
		return nil, err
	}

	r, err := os.Open(path)

	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrFileNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open file for reading: %s", err)
	}

	return r, nil
}

// pathOf rejects names which would escape the tester's directory
func (c *LocalClient) pathOf(tester string, fileName string) (string, error) {
	for _, part := range []string{tester, fileName} {
		if strings.ContainsAny(part, `/\`) || part == ".." {
			return "", fmt.Errorf("illegal path element %#q", part)
		}
	}

	if tester == "" || tester == "." {
		return "", fmt.Errorf("illegal tester name %#q", tester)
	}

	return filepath.Join(c.Directory, tester, fileName), nil
}
