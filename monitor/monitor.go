// Package monitor periodically connects to every configured tester, checks
// its base information and runs the scheduled downloads. The results are kept
// as snapshots for the web API.
package monitor

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dreitier/testermon/config"
	"github.com/dreitier/testermon/metrics"
	"github.com/dreitier/testermon/scpi"
	"github.com/dreitier/testermon/storage"
	fs "github.com/dreitier/testermon/storage/fs"
	"github.com/dreitier/testermon/tester"
	"github.com/dreitier/testermon/transcript"
	log "github.com/sirupsen/logrus"
)

var (
	ErrUnknownTester = errors.New("the requested tester does not exist")
	ErrNoArchive     = errors.New("no archive has been configured")
)

// DriverFactory creates a fresh driver for every refresh of a tester
type DriverFactory func(cfg *config.TesterConfiguration) scpi.Driver

func SocketDrivers(cfg *config.TesterConfiguration) scpi.Driver {
	return scpi.NewSocketDriver(scpi.WithPort(cfg.Port))
}

// Snapshot is the outcome of the latest refresh of a tester
type Snapshot struct {
	Name      string             `json:"name"`
	Address   string             `json:"address"`
	Connected bool               `json:"connected"`
	UpdatedAt time.Time          `json:"updated_at"`
	Info      *tester.BaseInfo   `json:"info,omitempty"`
	Downloads []*tester.Download `json:"downloads,omitempty"`
	Error     string             `json:"error,omitempty"`
}

type testerData struct {
	cfg      *config.TesterConfiguration
	metrics  *metrics.TesterMetric
	jobs     []*downloadJob
	snapshot *Snapshot
}

type Monitor struct {
	mutex   sync.Mutex
	testers []*testerData

	global            *config.GlobalConfiguration
	archive           storage.Client
	newDriver         DriverFactory
	transcriptOptions []transcript.Option
	clock             func() time.Time
}

type Option func(*Monitor)

// WithArchive stores every downloaded file in archive
func WithArchive(archive storage.Client) Option {
	return func(m *Monitor) {
		m.archive = archive
	}
}

func WithDriverFactory(factory DriverFactory) Option {
	return func(m *Monitor) {
		m.newDriver = factory
	}
}

// WithTranscriptOptions is applied to the transcript of every session
func WithTranscriptOptions(opts ...transcript.Option) Option {
	return func(m *Monitor) {
		m.transcriptOptions = opts
	}
}

func WithClock(clock func() time.Time) Option {
	return func(m *Monitor) {
		m.clock = clock
	}
}

func New(cfg *config.Configuration, opts ...Option) *Monitor {
	m := &Monitor{
		global:    cfg.Global(),
		newDriver: SocketDrivers,
		clock:     time.Now,
	}

	for _, opt := range opts {
		opt(m)
	}

	for _, testerCfg := range cfg.Testers() {
		data := &testerData{
			cfg:     testerCfg,
			metrics: metrics.NewTester(testerCfg.Name),
		}

		for i, downloadCfg := range testerCfg.Downloads {
			job, err := newDownloadJob(downloadCfg)
			if err != nil {
				log.Errorf("[tester:%s] Ignoring download #%d: %s", testerCfg.Name, i, err)
				continue
			}
			data.jobs = append(data.jobs, job)
		}

		m.testers = append(m.testers, data)
	}

	return m
}

// Close drops the metrics of all testers
func (m *Monitor) Close() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, t := range m.testers {
		t.metrics.Drop()
	}
	m.testers = nil
}

// Refresh processes all testers one after another
func (m *Monitor) Refresh(ctx context.Context) {
	log.Info("Updating testers info...")
	m.mutex.Lock()
	defer m.mutex.Unlock()

	started := m.clock()

	for _, t := range m.testers {
		if ctx.Err() != nil {
			log.Warnf("Refresh cancelled: %s", ctx.Err())
			return
		}

		log.Debugf("[tester:%s] Updating", t.cfg.Name)
		t.snapshot = m.refreshTester(ctx, t)
	}

	metrics.GetApplicationMetrics().RefreshCompleted(started, m.clock())
	log.Debug("... testers info updated")
}

// Schedule refreshes immediately and then every interval until ctx is done
func (m *Monitor) Schedule(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		m.Refresh(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Refresh(ctx)
			}
		}
	}()
}

func (m *Monitor) refreshTester(ctx context.Context, t *testerData) *Snapshot {
	now := m.clock()
	snapshot := &Snapshot{
		Name:      t.cfg.Name,
		Address:   t.cfg.Address,
		UpdatedAt: now,
	}

	session := tester.New(m.newDriver(t.cfg), t.cfg.Address, m.sessionOptions(t)...)
	defer func() {
		if err := session.Disconnect(); err != nil {
			log.Warnf("[tester:%s] Failed to disconnect: %s", t.cfg.Name, err)
		}
	}()

	if !session.Connected() {
		snapshot.Error = scpi.ErrNotConnected.Error()
		// keep the last known identification
		if t.snapshot != nil {
			snapshot.Info = t.snapshot.Info
		}
		return snapshot
	}

	snapshot.Connected = true

	info, err := session.CheckBaseInfo()
	if err != nil {
		log.Errorf("[tester:%s] Failed to check base info: %s", t.cfg.Name, err)
		snapshot.Error = err.Error()
		return snapshot
	}

	snapshot.Info = info
	t.metrics.UpdateBaseInfo(info, now)

	for _, job := range t.jobs {
		if !job.isDue(now) {
			log.Debugf("[tester:%s][dir:%s] Download is not due", t.cfg.Name, job.cfg.Directory)
			continue
		}

		downloads, err := m.runJob(ctx, session, t, job)
		snapshot.Downloads = append(snapshot.Downloads, downloads...)

		if err != nil {
			log.Errorf("[tester:%s][dir:%s] Download failed: %s", t.cfg.Name, job.cfg.Directory, err)
			snapshot.Error = err.Error()
			continue
		}

		job.lastRun = now
	}

	return snapshot
}

func (m *Monitor) sessionOptions(t *testerData) []tester.Option {
	transcriptOptions := append([]transcript.Option{transcript.WithFile(t.cfg.LogFile)}, m.transcriptOptions...)

	return []tester.Option{
		tester.WithTimeout(t.cfg.Timeout),
		tester.WithTimeLimit(m.global.QueryTimeLimit()),
		tester.WithListingThreshold(m.global.ListingThreshold()),
		tester.WithBinaryExtensions(t.cfg.BinaryExtensions...),
		tester.WithObserver(t.metrics),
		tester.WithTranscript(transcript.New(t.cfg.Address, transcriptOptions...)),
	}
}

func (m *Monitor) runJob(ctx context.Context, session *tester.Session, t *testerData, job *downloadJob) ([]*tester.Download, error) {
	var catalog *tester.Catalog

	if job.needsCatalog() {
		var err error
		if catalog, err = session.CatalogDirectory(job.cfg.Directory); err != nil {
			return nil, err
		}
	}

	dst := filepath.Join(t.cfg.DownloadDirectory, job.cfg.Directory)
	var r []*tester.Download

	for _, fileName := range job.selectFiles(catalog) {
		download, err := session.DownloadFile(fileName, job.cfg.Directory, dst)
		if err != nil {
			return r, err
		}

		r = append(r, download)

		if !download.Found {
			t.metrics.FileMissing()
			continue
		}

		if err := m.archiveDownload(ctx, t.cfg.Name, download); err != nil {
			log.Errorf("[tester:%s] Failed to archive %s: %s", t.cfg.Name, download.Name, err)
		}
	}

	return r, nil
}

func (m *Monitor) archiveDownload(ctx context.Context, testerName string, download *tester.Download) error {
	if m.archive == nil {
		return nil
	}

	content, err := os.ReadFile(download.LocalPath)
	if err != nil {
		return err
	}

	file := &fs.FileInfo{
		Name:         download.Name,
		Source:       download.Directory,
		Size:         int64(download.Size),
		Mode:         download.Mode.String(),
		DownloadedAt: m.clock(),
	}
	file.ArchivedAt = file.DownloadedAt

	return m.archive.Store(ctx, testerName, file, content)
}

// Testers returns the latest snapshot of every tester in configuration order.
// Testers which have not been refreshed yet only carry name and address.
func (m *Monitor) Testers() []*Snapshot {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	r := make([]*Snapshot, 0, len(m.testers))
	for _, t := range m.testers {
		r = append(r, t.currentSnapshot())
	}

	return r
}

// Find returns the latest snapshot of the tester, nil if it is unknown
func (m *Monitor) Find(name string) *Snapshot {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if t := m.find(name); t != nil {
		return t.currentSnapshot()
	}

	return nil
}

func (m *Monitor) ArchivedFiles(ctx context.Context, name string) ([]*fs.FileInfo, error) {
	if err := m.checkArchive(name); err != nil {
		return nil, err
	}

	return m.archive.GetFileNames(ctx, name)
}

func (m *Monitor) OpenArchivedFile(ctx context.Context, name string, fileName string) (io.ReadCloser, error) {
	if err := m.checkArchive(name); err != nil {
		return nil, err
	}

	return m.archive.Download(ctx, name, fileName)
}

func (m *Monitor) checkArchive(name string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.find(name) == nil {
		return ErrUnknownTester
	}

	if m.archive == nil {
		return ErrNoArchive
	}

	return nil
}

func (m *Monitor) find(name string) *testerData {
	for _, t := range m.testers {
		if t.cfg.Name == name {
			return t
		}
	}

	return nil
}

func (t *testerData) currentSnapshot() *Snapshot {
	if t.snapshot == nil {
		return &Snapshot{Name: t.cfg.Name, Address: t.cfg.Address}
	}

	snapshot := *t.snapshot
	return &snapshot
}
