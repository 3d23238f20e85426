// Package log bridges third-party logger interfaces onto the application's
// logrus stack so library internals share one log stream.
package log

import (
	badger "github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"
)

// BadgerLogrusAdapter routes the visited store's internal badger logging
// through a contextual logrus entry. The method set is fixed by
// badger.Logger; each call forwards at the matching level.
type BadgerLogrusAdapter struct {
	entry *logrus.Entry
}

var _ badger.Logger = (*BadgerLogrusAdapter)(nil)

// NewBadgerLogrusAdapter wraps entry as a badger.Logger.
func NewBadgerLogrusAdapter(entry *logrus.Entry) *BadgerLogrusAdapter {
	return &BadgerLogrusAdapter{entry: entry}
}

func (l *BadgerLogrusAdapter) Errorf(f string, v ...interface{})   { l.entry.Errorf(f, v...) }
func (l *BadgerLogrusAdapter) Warningf(f string, v ...interface{}) { l.entry.Warningf(f, v...) }
func (l *BadgerLogrusAdapter) Infof(f string, v ...interface{})    { l.entry.Infof(f, v...) }
func (l *BadgerLogrusAdapter) Debugf(f string, v ...interface{})   { l.entry.Debugf(f, v...) }
