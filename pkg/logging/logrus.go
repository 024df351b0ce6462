package logging

import (
	"io"

	"github.com/sirupsen/logrus"
)

const JSONFormat = "json"

// Logrus builds per-component logrus entries sharing one level and output
type Logrus struct {
	level  string
	format string
	output io.Writer
}

// NewLogrus creates a new logrus instance using the text formatter
func NewLogrus(level string, output io.Writer) *Logrus {
	return &Logrus{level: level, output: output}
}

// WithFormat switches the formatter, "json" or anything else for text
func (l *Logrus) WithFormat(format string) *Logrus {
	l.format = format
	return l
}

// Get returns a logrus entry tagged with the component context
func (l *Logrus) Get(context string) *logrus.Entry {
	log := logrus.New()
	level, err := logrus.ParseLevel(l.level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	if l.format == JSONFormat {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	log.SetOutput(l.output)
	return log.WithFields(logrus.Fields{
		"Context": context,
	})
}
