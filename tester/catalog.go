package tester

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	catalogQuery = "MMEM:CAT?"
	megabyte     = 1048576
	fileType     = "FILE"
)

var catalogEntryExpr = regexp.MustCompile(`"(.*?)"`)

// CatalogEntry is a single file or directory of a MMEM:CAT? reply
type CatalogEntry struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Size int64  `json:"size"`
}

func (e CatalogEntry) IsDir() bool {
	return e.Type != fileType
}

// Catalog is the content of the tester's current directory
type Catalog struct {
	UsedBytes float64        `json:"used_bytes"`
	FreeBytes float64        `json:"free_bytes"`
	Entries   []CatalogEntry `json:"entries"`
}

func (c *Catalog) UsedMB() float64 {
	return c.UsedBytes / megabyte
}

func (c *Catalog) FreeMB() float64 {
	return c.FreeBytes / megabyte
}

// Files returns every entry which is not a directory
func (c *Catalog) Files() []CatalogEntry {
	var files []CatalogEntry
	for _, entry := range c.Entries {
		if !entry.IsDir() {
			files = append(files, entry)
		}
	}
	return files
}

// ParseCatalog reads `<used>,<free>,"name,type,size",...`. An empty type denotes a file.
func ParseCatalog(reply string) (*Catalog, error) {
	spaceInfo := strings.SplitN(reply, ",", 3)
	if len(spaceInfo) < 2 {
		return nil, fmt.Errorf("catalog reply %q has no space information", reply)
	}

	used, err := strconv.ParseFloat(strings.TrimSpace(spaceInfo[0]), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid used space %q: %w", spaceInfo[0], err)
	}

	free, err := strconv.ParseFloat(strings.TrimSpace(spaceInfo[1]), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid free space %q: %w", spaceInfo[1], err)
	}

	c := &Catalog{UsedBytes: used, FreeBytes: free}

	for _, match := range catalogEntryExpr.FindAllStringSubmatch(reply, -1) {
		fields := strings.Split(match[1], ",")
		if len(fields) < 3 {
			return nil, fmt.Errorf("malformed catalog entry %q", match[1])
		}

		entryType := fields[1]
		if entryType == "" {
			entryType = fileType
		}

		size, err := strconv.ParseInt(strings.TrimSpace(fields[2]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid size in catalog entry %q: %w", match[1], err)
		}

		c.Entries = append(c.Entries, CatalogEntry{Name: fields[0], Type: entryType, Size: size})
	}

	return c, nil
}

// Listing renders the entries as table with a header line:
//
//	Name          Type   Size
//	capture.iqvsa FILE   1024
func (c *Catalog) Listing() []string {
	if len(c.Entries) == 0 {
		return nil
	}

	longest := 0
	for _, entry := range c.Entries {
		if len(entry.Name) > longest {
			longest = len(entry.Name)
		}
	}

	lines := make([]string, 0, len(c.Entries)+1)
	lines = append(lines, "Name"+pad(longest-4)+"   Type   Size")

	for _, entry := range c.Entries {
		lines = append(lines, fmt.Sprintf("%s%s   %s%s   %d",
			entry.Name, pad(longest-len(entry.Name)),
			entry.Type, pad(4-len(entry.Type)),
			entry.Size))
	}

	return lines
}

// Catalog lists the current directory of the tester
func (s *Session) Catalog() (*Catalog, error) {
	reply, err := s.Query(catalogQuery)
	if err != nil {
		return nil, err
	}

	return ParseCatalog(reply)
}

// CatalogDirectory lists directory dir and returns to the root directory afterwards
func (s *Session) CatalogDirectory(dir string) (c *Catalog, err error) {
	if err := s.changeDirectory(dir); err != nil {
		return nil, err
	}

	defer func() {
		if restoreErr := s.changeDirectory(""); restoreErr != nil && err == nil {
			err = restoreErr
		}
	}()

	return s.Catalog()
}

func pad(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(" ", n)
}
