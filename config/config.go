package config

import (
	"errors"
	"fmt"
	log "github.com/sirupsen/logrus"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

type Configuration struct {
	global  *GlobalConfiguration
	http    *HttpConfiguration
	archive *ArchiveConfiguration
	testers []*TesterConfiguration
}

var (
	instance                *Configuration
	instanceErr             error
	once                    sync.Once
	configSearchDirectories []string
	explicitConfigPath      string
	hasGlobalDebugEnabled   bool
)

const (
	CfgFileName = "config.yaml"
	PathLocal   = "."
	PathGlobal  = "/etc/testermon"

	DefaultPort             = 5025
	DefaultTimeout          = 5 * time.Second
	DefaultQueryTimeLimit   = 3 * time.Second
	DefaultListingThreshold = 1024 * 1024 * 1024
	DefaultHttpPort         = 9090
	DefaultUpdateInterval   = 15 * time.Minute
	DefaultBinaryExtension  = ".iqvsa"
)

func init() {
	configSearchDirectories = append(configSearchDirectories, PathLocal)

	userHome, err := os.UserHomeDir()

	if err == nil {
		configSearchDirectories = append(configSearchDirectories, filepath.Join(userHome, ".testermon"))
	}

	configSearchDirectories = append(configSearchDirectories, PathGlobal)
}

// SetGlobalDebug enables debug logging and overwrites any configuration file log level
func SetGlobalDebug(enabled bool) {
	hasGlobalDebugEnabled = enabled

	if enabled {
		log.SetLevel(log.DebugLevel)
		log.Debug("Debug log level enabled")
	}
}

func HasGlobalDebugEnabled() bool {
	return hasGlobalDebugEnabled
}

// SetConfigPath skips the search directories and uses the given file
func SetConfigPath(path string) {
	explicitConfigPath = path
}

// GetInstance loads the configuration file once and returns the result of that first attempt
func GetInstance() (*Configuration, error) {
	once.Do(func() {
		instance, instanceErr = Load()
	})
	return instance, instanceErr
}

func (c *Configuration) Global() *GlobalConfiguration {
	return c.global
}

func (c *Configuration) Http() *HttpConfiguration {
	return c.http
}

func (c *Configuration) Archive() *ArchiveConfiguration {
	return c.archive
}

func (c *Configuration) Testers() []*TesterConfiguration {
	return c.testers
}

// Tester looks up a configured tester by its name
func (c *Configuration) Tester(name string) *TesterConfiguration {
	for _, t := range c.testers {
		if t.Name == name {
			return t
		}
	}

	return nil
}

// Load searches the configuration file and parses it
func Load() (*Configuration, error) {
	var file *os.File = nil
	var err error = nil

	candidates := configSearchDirectories
	if explicitConfigPath != "" {
		candidates = []string{explicitConfigPath}
	}

	for _, candidate := range candidates {
		possibleConfigPath := candidate
		if explicitConfigPath == "" {
			possibleConfigPath = filepath.Join(candidate, CfgFileName)
		}
		log.Debugf("Checking for configuration file at %s", possibleConfigPath)

		file, err = os.Open(possibleConfigPath)

		if err == nil {
			log.Infof("Found configuration file at location %s", possibleConfigPath)
			break
		}
	}

	if file == nil {
		return nil, errors.New("could not find any configuration file")
	}

	defer file.Close()

	cfg, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file: %s", err)
	}

	return NewConfigurationInstance(cfg), nil
}

func NewConfigurationInstance(cfg Raw) *Configuration {
	return &Configuration{
		global:  parseGlobal(cfg),
		http:    parseHttp(cfg.Sub("http")),
		archive: parseArchive(cfg.Sub("archive")),
		testers: parseTesters(cfg.Sub("testers")),
	}
}

func parseGlobal(cfg Raw) *GlobalConfiguration {
	logLevel := log.InfoLevel
	if cfg.Has("log_level") {
		parsedLevel, err := log.ParseLevel(cfg.String("log_level"))
		if err == nil {
			logLevel = parsedLevel
		} else {
			log.Warnf("Cannot parse log level, defaulting to 'info': %s", err)
		}
	}

	httpPort := DefaultHttpPort
	if cfg.Has("port") {
		httpPort = int(cfg.Int64("port"))
	}

	updateInterval := DefaultUpdateInterval
	if cfg.Has("update_interval") {
		updateInterval = cfg.Duration("update_interval")
	}

	if updateInterval < time.Minute {
		log.Warnf("Update interval must not be less than 1 minute, defaulting to %s.", DefaultUpdateInterval)
		updateInterval = DefaultUpdateInterval
	}

	queryTimeLimit := DefaultQueryTimeLimit
	if cfg.Has("query_time_limit") {
		queryTimeLimit = cfg.Duration("query_time_limit")
	}

	listingThreshold := uint64(DefaultListingThreshold)
	if cfg.Has("listing_threshold") {
		listingThreshold = cfg.Bytes("listing_threshold")
	}

	return &GlobalConfiguration{
		logLevel:         logLevel,
		httpPort:         httpPort,
		updateInterval:   updateInterval,
		queryTimeLimit:   queryTimeLimit,
		listingThreshold: listingThreshold,
	}
}

func parseHttp(cfg Raw) *HttpConfiguration {
	r := &HttpConfiguration{}

	if cfg == nil {
		return r
	}

	if auth := cfg.Sub("basic_auth"); auth != nil {
		r.BasicAuth = &BasicAuthConfiguration{
			Username: auth.String("username"),
			Password: auth.String("password"),
		}
	}

	if tls := cfg.Sub("tls"); tls != nil {
		r.Tls = &TlsConfiguration{
			CertificatePath: tls.String("certificate"),
			PrivateKeyPath:  tls.String("private_key"),
			IsStrict:        tls.Bool("strict"),
		}
	}

	return r
}

func parseArchive(cfg Raw) *ArchiveConfiguration {
	if cfg == nil {
		return nil
	}

	// check if local archive or S3 archive
	if cfg.Has("path") {
		return &ArchiveConfiguration{Directory: cfg.String("path")}
	}

	region := "eu-central-1"
	if cfg.Has("region") {
		region = cfg.String("region")
	}

	return &ArchiveConfiguration{
		Bucket:         cfg.String("bucket"),
		Prefix:         cfg.String("prefix"),
		Region:         region,
		ForcePathStyle: cfg.Bool("force_path_style"),
		AccessKey:      cfg.String("access_key_id"),
		SecretKey:      cfg.String("secret_access_key"),
		Endpoint:       cfg.String("endpoint"),
		Token:          cfg.String("token"),
	}
}

func parseTesters(cfg Raw) []*TesterConfiguration {
	var testers []*TesterConfiguration

	names := make([]string, 0, len(cfg))
	for name := range cfg {
		names = append(names, name)
	}
	// map order is random, keep the processing order stable
	sort.Strings(names)

	for _, name := range names {
		tester, err := parseTester(cfg.Sub(name), name)

		if err != nil {
			log.Errorf("Tester '%s' could not be parsed: %s", name, err)
			continue
		}

		testers = append(testers, tester)
	}

	return testers
}

func parseTester(cfg Raw, name string) (*TesterConfiguration, error) {
	if name == "" {
		return nil, errors.New("missing tester name")
	}

	if cfg == nil {
		return nil, errors.New("missing tester configuration entries")
	}

	address := cfg.String("address")
	if address == "" {
		return nil, errors.New("parameter 'address' is missing or empty")
	}

	port := DefaultPort
	if cfg.Has("port") {
		port = int(cfg.Int64("port"))
	}

	timeout := DefaultTimeout
	if cfg.Has("timeout") {
		timeout = cfg.Duration("timeout")
	}

	binaryExtensions := []string{DefaultBinaryExtension}
	if cfg.Has("binary_extensions") {
		binaryExtensions = cfg.StringSlice("binary_extensions")
	}

	r := &TesterConfiguration{
		Name:              name,
		Address:           address,
		Port:              port,
		Timeout:           timeout,
		LogFile:           cfg.String("log"),
		DownloadDirectory: cfg.String("download_directory"),
		BinaryExtensions:  binaryExtensions,
	}

	if r.DownloadDirectory == "" {
		r.DownloadDirectory = filepath.Join(PathLocal, "downloads", name)
	}

	for i, downloadCfg := range cfg.SubList("downloads") {
		download, err := parseDownload(downloadCfg)

		if err != nil {
			log.Warnf("Tester '%s': ignoring download #%d: %s", name, i, err)
			continue
		}

		r.Downloads = append(r.Downloads, download)
	}

	return r, nil
}

func parseDownload(cfg Raw) (*DownloadConfiguration, error) {
	r := &DownloadConfiguration{
		Directory: cfg.String("directory"),
		Schedule:  cfg.String("schedule"),
		Filter:    ParseFilesSection(nil),
	}

	files := cfg.Sub("files")
	if files != nil {
		r.Filter = ParseFilesSection(files)
	} else {
		r.Files = cfg.StringSlice("files")
	}

	if len(r.Files) == 0 && r.Filter.IsEmpty() {
		return nil, errors.New("neither a list of files nor include/exclude rules have been defined")
	}

	return r, nil
}
