package main

import (
	"fmt"

	"github.com/dreitier/testermon/cmd"
	log "github.com/sirupsen/logrus"
)

var gitRepo = "dreitier/testermon"
var gitCommit = "unknown"
var gitTag = "unknown"

func version() string {
	if gitTag == "" {
		gitTag = "err-no-git-tag"
	}

	return fmt.Sprintf("%s (dist=%s; commit=%s)", gitTag, gitRepo, gitCommit)
}

func main() {
	configureLogrus()
	cmd.Execute(version())
}

func configureLogrus() {
	customFormatter := new(log.TextFormatter)
	customFormatter.TimestampFormat = "2006-01-02 15:04:05"
	customFormatter.FullTimestamp = true
	log.SetFormatter(customFormatter)
}
