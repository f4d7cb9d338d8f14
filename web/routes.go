package web

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/dreitier/testermon/config"
	"github.com/dreitier/testermon/metrics"
	"github.com/dreitier/testermon/monitor"
	fs "github.com/dreitier/testermon/storage/fs"
	"github.com/goji/httpauth"
	"github.com/gorilla/mux"
)

// Source provides the testers' state, usually a *monitor.Monitor
type Source interface {
	Testers() []*monitor.Snapshot
	Find(name string) *monitor.Snapshot
	ArchivedFiles(ctx context.Context, name string) ([]*fs.FileInfo, error)
	OpenArchivedFile(ctx context.Context, name string, fileName string) (io.ReadCloser, error)
}

type api struct {
	source Source
}

// NewRouter serves the API below /api and the metrics at /metrics. With
// basicAuth every route requires the configured credentials.
func NewRouter(source Source, basicAuth *config.BasicAuthConfiguration) http.Handler {
	a := &api{source: source}

	router := mux.NewRouter().UseEncodedPath()
	router.StrictSlash(true)
	router.HandleFunc("/", BaseHandler)
	router.Handle("/metrics", metrics.Handler())

	router.HandleFunc("/api", a.TestersHandler).Methods("GET")
	router.HandleFunc("/api/{tester}", a.TesterHandler).Methods("GET")
	router.HandleFunc("/api/{tester}/catalog", a.CatalogHandler).Methods("GET")
	router.HandleFunc("/api/{tester}/files", a.FilesHandler).Methods("GET")
	router.HandleFunc("/api/{tester}/files/{file}", a.FileHandler).Methods("GET")

	if basicAuth == nil {
		return router
	}

	return httpauth.SimpleBasicAuth(basicAuth.Username, basicAuth.Password)(router)
}

// Base route to access the API.
func BaseHandler(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/api", http.StatusMovedPermanently)
}

func (a *api) TestersHandler(w http.ResponseWriter, r *http.Request) {
	GetTesters(w, a.source)
}

func (a *api) TesterHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	unescape(vars)

	GetTester(w, a.source, vars["tester"])
}

func (a *api) CatalogHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	unescape(vars)

	GetCatalog(w, a.source, vars["tester"])
}

func (a *api) FilesHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	unescape(vars)

	GetFiles(r.Context(), w, a.source, vars["tester"])
}

func (a *api) FileHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	unescape(vars)

	Download(r.Context(), w, a.source, vars["tester"], vars["file"])
}

func testerNotFound(w http.ResponseWriter, tester string) {
	notFound(w, "Tester", tester)
}

func catalogNotFound(w http.ResponseWriter, tester string) {
	notFound(w, "Catalog of tester", tester)
}

func fileNotFound(w http.ResponseWriter, file string) {
	notFound(w, "File", file)
}

func notFound(w http.ResponseWriter, kind string, name string) {
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte(kind + ` '`))
	_, _ = w.Write([]byte(name))
	_, _ = w.Write([]byte(`' does not exist.`))
}

func unescape(vars map[string]string) {
	for key, val := range vars {
		val, err := url.PathUnescape(val)
		if err == nil {
			vars[key] = val
		}
	}
}
