// Package event holds the shared logger and the in-process message hub
// used to announce build, thumbnail and deploy progress.
package event

import (
	"os"
	"strings"

	"github.com/leandro-lugaresi/hub"
	"github.com/sirupsen/logrus"
)

type Hub = hub.Hub
type Data = hub.Fields
type Message = hub.Message
type Subscription = hub.Subscription

// Log is the logger shared by all packages.
var Log = newLogger()

var channelCap = 100
var sharedHub = NewHub()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// SetLevel parses and applies a log level such as "debug" or "warn".
func SetLevel(level string) error {
	if strings.TrimSpace(level) == "" {
		return nil
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	Log.SetLevel(lvl)
	return nil
}

func NewHub() *Hub {
	return hub.New()
}

func SharedHub() *Hub {
	return sharedHub
}

func Publish(event string, data Data) {
	SharedHub().Publish(Message{
		Name:   event,
		Fields: data,
	})
}

func Subscribe(topics ...string) Subscription {
	return SharedHub().NonBlockingSubscribe(channelCap, topics...)
}

func Unsubscribe(s Subscription) {
	SharedHub().Unsubscribe(s)
}
