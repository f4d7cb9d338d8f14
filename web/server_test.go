package web

import (
	"crypto/tls"
	"net/http"
	"testing"

	"github.com/dreitier/testermon/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServerConfiguration(t *testing.T, content string) *config.Configuration {
	t.Helper()

	raw, err := config.ParseFromString(content)
	require.NoError(t, err)

	return config.NewConfigurationInstance(raw)
}

func TestNewServer_plain(t *testing.T) {
	sut := NewServer(newServerConfiguration(t, "port: 8080\n"), http.NotFoundHandler())

	assert.Equal(t, ":8080", sut.Addr)
	assert.Nil(t, sut.TLSConfig)
	assert.Nil(t, sut.TLSNextProto)
}

func TestNewServer_strictTls(t *testing.T) {
	sut := NewServer(newServerConfiguration(t, `
http:
  tls:
    certificate: cert.pem
    private_key: key.pem
    strict: true
`), http.NotFoundHandler())

	assert.Equal(t, ":9090", sut.Addr)
	require.NotNil(t, sut.TLSConfig)
	assert.Equal(t, uint16(tls.VersionTLS12), sut.TLSConfig.MinVersion)
	assert.NotNil(t, sut.TLSNextProto)
	assert.Empty(t, sut.TLSNextProto)
}

func TestNewServer_tlsWithoutStrict(t *testing.T) {
	sut := NewServer(newServerConfiguration(t, `
http:
  tls:
    certificate: cert.pem
    private_key: key.pem
`), http.NotFoundHandler())

	assert.Nil(t, sut.TLSConfig)
	assert.NotNil(t, sut.TLSNextProto)
}
