package transcript

import (
	"bytes"
	"strings"

	log "github.com/sirupsen/logrus"
)

// TimestampFormat has millisecond precision
const TimestampFormat = "2006-01-02 15:04:05.000"

var levelNames = map[log.Level]string{
	log.PanicLevel: "ERROR",
	log.FatalLevel: "ERROR",
	log.ErrorLevel: "ERROR",
	log.WarnLevel:  "WARN",
	log.InfoLevel:  "INFO",
	log.DebugLevel: "DEBUG",
	log.TraceLevel: "DEBUG",
}

// Formatter renders entries as `TIMESTAMP [LEVEL] [ADDRESS]\tMESSAGE`
type Formatter struct {
	Address string
}

func (f *Formatter) Format(entry *log.Entry) ([]byte, error) {
	var b bytes.Buffer

	b.Grow(len(TimestampFormat) + len(f.Address) + len(entry.Message) + 16)
	b.WriteString(entry.Time.Format(TimestampFormat))
	b.WriteString(" [")
	b.WriteString(LevelName(entry.Level))
	b.WriteString("] [")
	b.WriteString(f.Address)
	b.WriteString("]\t")
	b.WriteString(entry.Message)

	if !strings.HasSuffix(entry.Message, "\n") {
		b.WriteByte('\n')
	}

	return b.Bytes(), nil
}

func LevelName(level log.Level) string {
	if name, ok := levelNames[level]; ok {
		return name
	}
	return strings.ToUpper(level.String())
}
