package monitor

import (
	"fmt"
	"time"

	"github.com/dreitier/testermon/config"
	"github.com/dreitier/testermon/tester"
	"github.com/gorhill/cronexpr"
)

type downloadJob struct {
	cfg *config.DownloadConfiguration
	// nil runs the job on every refresh
	schedule *cronexpr.Expression
	lastRun  time.Time
}

func newDownloadJob(cfg *config.DownloadConfiguration) (*downloadJob, error) {
	job := &downloadJob{cfg: cfg}

	if cfg.Schedule != "" {
		schedule, err := cronexpr.Parse(cfg.Schedule)
		if err != nil {
			return nil, fmt.Errorf("invalid schedule %#q: %s", cfg.Schedule, err)
		}
		job.schedule = schedule
	}

	return job, nil
}

// isDue is true if the job never ran or the schedule fired since the last run
func (j *downloadJob) isDue(now time.Time) bool {
	if j.schedule == nil || j.lastRun.IsZero() {
		return true
	}

	return FindPrevious(j.schedule, now).After(j.lastRun)
}

// needsCatalog is true if the files are selected from the directory's content
func (j *downloadJob) needsCatalog() bool {
	return len(j.cfg.Files) == 0
}

// selectFiles returns the configured file names or the catalog's files accepted by the filter
func (j *downloadJob) selectFiles(catalog *tester.Catalog) []string {
	if !j.needsCatalog() {
		return j.cfg.Files
	}

	if catalog == nil {
		return nil
	}

	var r []string
	for _, entry := range catalog.Files() {
		if j.cfg.Filter.IsFileIncluded(entry.Name) {
			r = append(r, entry.Name)
		}
	}

	return r
}
