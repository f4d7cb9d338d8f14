package dotstat

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	fs "github.com/dreitier/testermon/storage/fs"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const DotStatFileSuffix = ".stat"

// DotStatYaml is a simple YAML file stored next to each archived file, containing statistics about it
type DotStatYaml struct {
	Source       *string `yaml:"source,omitempty"`
	Mode         *string `yaml:"mode,omitempty"`
	DownloadedAt *string `yaml:"downloaded_at,omitempty"`
	ArchivedAt   *string `yaml:"archived_at,omitempty"`
}

// ApplyDotStatValues For the provided map, each .stat content of an archived file is parsed and then applied to the file's attributes
func ApplyDotStatValues(dotStatContents map[string] /* file name */ []byte, files []*fs.FileInfo) {
	for _, fileInfo := range files {
		buf, ok := dotStatContents[fileInfo.Name]
		if !ok {
			continue
		}

		if _, err := Apply(fileInfo, buf); err != nil {
			log.Warnf("Could not parse stat file of %s: %s", fileInfo.Name, err)
			continue
		}

		log.Debugf("%s: stat file has been applied", fileInfo.Name)
	}
}

// Apply reads the YAML content and updates the file's Source, Mode, DownloadedAt and ArchivedAt
func Apply(fileInfo *fs.FileInfo, buf []byte) (*DotStatYaml, error) {
	c := &DotStatYaml{}

	if err := yaml.Unmarshal(buf, c); err != nil {
		return nil, fmt.Errorf("unable to unmarshal: %v", err)
	}

	if c.Source != nil {
		fileInfo.Source = *c.Source
	}

	if c.Mode != nil {
		fileInfo.Mode = *c.Mode
	}

	updateTimeField(c.DownloadedAt, &fileInfo.DownloadedAt)
	updateTimeField(c.ArchivedAt, &fileInfo.ArchivedAt)

	return c, nil
}

// Marshal renders the .stat content for fileInfo; timestamps are stored as unix seconds
func Marshal(fileInfo *fs.FileInfo) ([]byte, error) {
	c := &DotStatYaml{}

	if fileInfo.Source != "" {
		c.Source = &fileInfo.Source
	}

	if fileInfo.Mode != "" {
		c.Mode = &fileInfo.Mode
	}

	c.DownloadedAt = unixString(fileInfo.DownloadedAt)
	c.ArchivedAt = unixString(fileInfo.ArchivedAt)

	return yaml.Marshal(c)
}

// ToDotStatPath Appends the `.stat` suffix to the provide file path
func ToDotStatPath(pathToOriginalFile string) string {
	return pathToOriginalFile + DotStatFileSuffix
}

// IsStatFile Return true if the file name or path has a `.stat` suffix
func IsStatFile(fileName string) bool {
	return strings.HasSuffix(fileName, DotStatFileSuffix)
}

// RemoveDotStatSuffix Removes the `.stat` suffix from the provided file path if present
func RemoveDotStatSuffix(pathToDotStatFile string) string {
	return strings.TrimSuffix(pathToDotStatFile, DotStatFileSuffix)
}

func unixString(t time.Time) *string {
	if t.IsZero() {
		return nil
	}

	r := strconv.FormatInt(t.Unix(), 10)
	return &r
}

func updateTimeField(content *string, targetTime *time.Time) {
	if content == nil {
		return
	}

	i, err := strconv.ParseInt(*content, 10, 64)

	if err != nil {
		log.Debugf("Unable to parse '%s': %s", *content, err)
		// ignore any parsing errors
		return
	}

	*targetTime = time.Unix(i, 0)
}
