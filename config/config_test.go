package config

import (
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func Test_NewConfigurationInstance_appliesDefaults(t *testing.T) {
	assertion := assert.New(t)

	raw, _ := ParseFromString(`
testers:
  bench-1:
    address: 192.168.100.254
`)
	sut := NewConfigurationInstance(raw)

	assertion.Equal(log.InfoLevel, sut.Global().LogLevel())
	assertion.Equal(DefaultHttpPort, sut.Global().HttpPort())
	assertion.Equal(DefaultQueryTimeLimit, sut.Global().QueryTimeLimit())
	assertion.Equal(uint64(DefaultListingThreshold), sut.Global().ListingThreshold())
	assertion.Nil(sut.Archive())

	tester := sut.Tester("bench-1")
	assertion.NotNil(tester)
	assertion.Equal("192.168.100.254:5025", tester.Endpoint())
	assertion.Equal(DefaultTimeout, tester.Timeout)
	assertion.Equal([]string{".iqvsa"}, tester.BinaryExtensions)
	assertion.Equal(filepath.Join(".", "downloads", "bench-1"), tester.DownloadDirectory)
}

func Test_NewConfigurationInstance_parsesEverySection(t *testing.T) {
	assertion := assert.New(t)
	t.Setenv("TESTERMON_PASSWORD", "secret")

	raw, err := ParseFromString(`
log_level: debug
port: 8080
update_interval: 2h
query_time_limit: 1500ms
listing_threshold: 512M
http:
  basic_auth:
    username: admin
    password: __${TESTERMON_PASSWORD}__
  tls:
    certificate: cert.pem
    private_key: key.pem
    strict: true
archive:
  bucket: captures
  endpoint: http://minio:9000
  force_path_style: true
testers:
  bench-2:
    address: 10.0.0.2
    port: 5026
    timeout: 10s
    log: bench-2.log
    binary_extensions: [.iqvsa, .bin]
    downloads:
      - directory: User
        schedule: "0 3 * * *"
        files:
          include: ["/\\.iqvsa$/"]
      - directory: Log
        files: [system.log]
      - directory: Broken
  bench-1:
    address: 10.0.0.1
`)
	assertion.NoError(err)

	sut := NewConfigurationInstance(raw)

	assertion.Equal(log.DebugLevel, sut.Global().LogLevel())
	assertion.Equal(8080, sut.Global().HttpPort())
	assertion.Equal(2*time.Hour, sut.Global().UpdateInterval())
	assertion.Equal(1500*time.Millisecond, sut.Global().QueryTimeLimit())
	assertion.Equal(uint64(512*1024*1024), sut.Global().ListingThreshold())

	assertion.Equal("secret", sut.Http().BasicAuth.Password)
	assertion.True(sut.Http().Tls.IsStrict)

	assertion.False(sut.Archive().IsLocal())
	assertion.Equal("captures", sut.Archive().Bucket)
	assertion.Equal("eu-central-1", sut.Archive().Region)
	assertion.True(sut.Archive().ForcePathStyle)

	testers := sut.Testers()
	assertion.Len(testers, 2)
	assertion.Equal("bench-1", testers[0].Name)
	assertion.Equal("bench-2", testers[1].Name)

	bench2 := testers[1]
	assertion.Equal("10.0.0.2:5026", bench2.Endpoint())
	assertion.Equal(10*time.Second, bench2.Timeout)
	assertion.Equal("bench-2.log", bench2.LogFile)
	assertion.Equal([]string{".iqvsa", ".bin"}, bench2.BinaryExtensions)

	// the download without files is dropped
	assertion.Len(bench2.Downloads, 2)
	assertion.Equal("0 3 * * *", bench2.Downloads[0].Schedule)
	assertion.True(bench2.Downloads[0].Filter.IsFileIncluded("capture.iqvsa"))
	assertion.Equal([]string{"system.log"}, bench2.Downloads[1].Files)
}

func Test_NewConfigurationInstance_skipsTesterWithoutAddress(t *testing.T) {
	assertion := assert.New(t)

	raw, _ := ParseFromString(`
testers:
  broken:
    port: 5025
  ok:
    address: localhost
`)
	sut := NewConfigurationInstance(raw)

	assertion.Len(sut.Testers(), 1)
	assertion.Nil(sut.Tester("broken"))
}

func Test_NewConfigurationInstance_updateIntervalHasLowerBound(t *testing.T) {
	assertion := assert.New(t)

	raw, _ := ParseFromString(`update_interval: 10s`)
	sut := NewConfigurationInstance(raw)

	assertion.Equal(DefaultUpdateInterval, sut.Global().UpdateInterval())
}

func Test_Load_usesExplicitPath(t *testing.T) {
	assertion := assert.New(t)

	path := filepath.Join(t.TempDir(), "custom.yaml")
	assertion.NoError(os.WriteFile(path, []byte("archive:\n  path: /tmp/archive\n"), 0o644))

	SetConfigPath(path)
	defer SetConfigPath("")

	sut, err := Load()

	assertion.NoError(err)
	assertion.True(sut.Archive().IsLocal())
	assertion.Equal("/tmp/archive", sut.Archive().Directory)
}

func Test_Load_failsWithoutFile(t *testing.T) {
	assertion := assert.New(t)

	SetConfigPath(filepath.Join(t.TempDir(), "missing.yaml"))
	defer SetConfigPath("")

	_, err := Load()

	assertion.Error(err)
}
