package storage

import (
	"errors"
	"log"

	"github.com/cockroachdb/pebble"
)

// Pebble stores values in a Pebble database.
type Pebble struct {
	db *pebble.DB
}

// NewPebble opens (or creates) a Pebble database in dir.
func NewPebble(dir string) (*Pebble, error) {
	db, err := pebble.Open(dir, &pebble.Options{Logger: quietLogger{}})
	if err != nil {
		return nil, err
	}
	return &Pebble{db: db}, nil
}

// Get implements Storage.
func (p *Pebble) Get(key string) ([]byte, bool, error) {
	value, closer, err := p.db.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	defer closer.Close()
	return append([]byte(nil), value...), true, nil
}

// Put implements Storage.
func (p *Pebble) Put(key string, value []byte) error {
	return p.db.Set([]byte(key), value, pebble.Sync)
}

// Delete implements Storage.
func (p *Pebble) Delete(key string) error {
	return p.db.Delete([]byte(key), pebble.Sync)
}

// Close implements Storage.
func (p *Pebble) Close() error {
	return p.db.Close()
}

type quietLogger struct{}

func (quietLogger) Infof(format string, args ...interface{})  {}
func (quietLogger) Errorf(format string, args ...interface{}) {}
func (quietLogger) Fatalf(format string, args ...interface{}) { log.Fatalf(format, args...) }
