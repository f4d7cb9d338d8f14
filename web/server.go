package web

import (
	"crypto/tls"
	"fmt"
	"net/http"

	"github.com/dreitier/testermon/config"
	log "github.com/sirupsen/logrus"
)

// NewServer binds handler to the configured port. With a TLS section, all
// protocols but HTTP/1.1 are disabled; `strict: true` additionally restricts
// the ciphers to something SSLLabs prefers.
func NewServer(cfg *config.Configuration, handler http.Handler) *http.Server {
	listenAddr := fmt.Sprintf(":%d", cfg.Global().HttpPort())

	srv := &http.Server{
		Handler: handler,
		Addr:    listenAddr,
	}

	userDefinedTlsConfiguration := cfg.Http().Tls
	if userDefinedTlsConfiguration == nil {
		return srv
	}

	// @see https://gist.github.com/denji/12b3a568f092ab951456
	if userDefinedTlsConfiguration.IsStrict {
		srv.TLSConfig = &tls.Config{
			MinVersion:       tls.VersionTLS12,
			CurvePreferences: []tls.CurveID{tls.CurveP521, tls.CurveP384, tls.CurveP256},
			CipherSuites: []uint16{
				tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
				tls.TLS_ECDHE_RSA_WITH_AES_256_CBC_SHA,
				tls.TLS_RSA_WITH_AES_256_GCM_SHA384,
				tls.TLS_RSA_WITH_AES_256_CBC_SHA,
			},
		}
	}

	// provide an empty hashmap to disable any other TLS ciphers
	srv.TLSNextProto = make(map[string]func(*http.Server, *tls.Conn, http.Handler))

	return srv
}

// ListenAndServe blocks until srv fails or has been shut down
func ListenAndServe(cfg *config.Configuration, srv *http.Server) error {
	log.Infof("Starting webserver on %s", srv.Addr)

	var err error

	// if the user has provided a TLS configuration, start with TLS
	if userDefinedTlsConfiguration := cfg.Http().Tls; userDefinedTlsConfiguration != nil {
		err = srv.ListenAndServeTLS(userDefinedTlsConfiguration.CertificatePath, userDefinedTlsConfiguration.PrivateKeyPath)
	} else {
		// if no TLS configuration is present, work in unencrypted mode
		err = srv.ListenAndServe()
	}

	if err == http.ErrServerClosed {
		return nil
	}

	return err
}
