package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/dreitier/testermon/monitor"
	"github.com/dreitier/testermon/storage"
	log "github.com/sirupsen/logrus"
)

type testerSummary struct {
	Name      string    `json:"name"`
	Alias     string    `json:"alias"`
	Address   string    `json:"address"`
	Connected bool      `json:"connected"`
	UpdatedAt time.Time `json:"updated_at"`
	Error     string    `json:"error,omitempty"`
}

func GetTesters(w http.ResponseWriter, source Source) {
	snapshots := source.Testers()
	r := make([]*testerSummary, 0, len(snapshots))

	for _, snapshot := range snapshots {
		alias, _ := MakeLegalAlias(snapshot.Name)
		r = append(r, &testerSummary{
			Name:      snapshot.Name,
			Alias:     alias,
			Address:   snapshot.Address,
			Connected: snapshot.Connected,
			UpdatedAt: snapshot.UpdatedAt,
			Error:     snapshot.Error,
		})
	}

	writeData(w, r)
}

func GetTester(w http.ResponseWriter, source Source, alias string) {
	snapshot := findTester(w, source, alias)
	if snapshot == nil {
		return
	}

	writeData(w, snapshot)
}

func GetCatalog(w http.ResponseWriter, source Source, alias string) {
	snapshot := findTester(w, source, alias)
	if snapshot == nil {
		return
	}

	if snapshot.Info == nil || snapshot.Info.Storage == nil {
		catalogNotFound(w, snapshot.Name)
		return
	}

	writeData(w, snapshot.Info.Storage)
}

func GetFiles(ctx context.Context, w http.ResponseWriter, source Source, alias string) {
	snapshot := findTester(w, source, alias)
	if snapshot == nil {
		return
	}

	files, err := source.ArchivedFiles(ctx, snapshot.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	writeData(w, files)
}

func Download(ctx context.Context, w http.ResponseWriter, source Source, alias string, fileName string) {
	snapshot := findTester(w, source, alias)
	if snapshot == nil {
		return
	}

	data, err := source.OpenArchivedFile(ctx, snapshot.Name, fileName)
	if errors.Is(err, storage.ErrFileNotFound) {
		fileNotFound(w, fileName)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	defer data.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": fileName}))

	if _, err = io.Copy(w, data); err != nil {
		// the status line has already been sent
		log.Warnf("Failed to send %s of tester %s: %s", fileName, snapshot.Name, err)
	}
}

func writeData(w http.ResponseWriter, data interface{}) {
	b, err := json.Marshal(data)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_, _ = w.Write(b)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, monitor.ErrNoArchive) || errors.Is(err, monitor.ErrUnknownTester) {
		status = http.StatusNotFound
	}

	w.WriteHeader(status)
	_, _ = w.Write([]byte(err.Error()))
}

// findTester accepts the tester's name as well as its alias
func findTester(w http.ResponseWriter, source Source, alias string) *monitor.Snapshot {
	if snapshot := source.Find(alias); snapshot != nil {
		return snapshot
	}

	// a legal alias equals the name it was made from
	if LegalAlias(alias) {
		testerNotFound(w, alias)
		return nil
	}

	for _, snapshot := range source.Testers() {
		if legal, _ := MakeLegalAlias(snapshot.Name); legal == alias {
			return snapshot
		}
	}

	testerNotFound(w, alias)
	return nil
}
