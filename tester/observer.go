package tester

import "time"

// Observer is notified about the session's activity, e.g. to export metrics
type Observer interface {
	// Connected reports the outcome of the connection attempt
	Connected(connected bool)
	QueryCompleted(cmd string, elapsed time.Duration, slow bool)
	FileDownloaded(mode TransferMode, bytes int)
}

type nopObserver struct{}

func (nopObserver) Connected(bool)                             {}
func (nopObserver) QueryCompleted(string, time.Duration, bool) {}
func (nopObserver) FileDownloaded(TransferMode, int)           {}
