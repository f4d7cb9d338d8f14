package config

import (
	log "github.com/sirupsen/logrus"
	"time"
)

type GlobalConfiguration struct {
	logLevel         log.Level
	httpPort         int
	updateInterval   time.Duration
	queryTimeLimit   time.Duration
	listingThreshold uint64
}

func (config *GlobalConfiguration) LogLevel() log.Level {
	return config.logLevel
}

func (config *GlobalConfiguration) HttpPort() int {
	return config.httpPort
}

func (config *GlobalConfiguration) UpdateInterval() time.Duration {
	return config.updateInterval
}

// QueryTimeLimit is the elapsed time after which a query gets reported in the transcript
func (config *GlobalConfiguration) QueryTimeLimit() time.Duration {
	return config.queryTimeLimit
}

// ListingThreshold is the remaining space below which the base info dump lists the tester's files
func (config *GlobalConfiguration) ListingThreshold() uint64 {
	return config.listingThreshold
}
