// Package jsondb persists each collection as one pretty-printed JSON document
// that is rewritten in full on every mutation. It is the default storage
// backend; expected load is tiny.
package jsondb

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

type DB struct {
	Users         *userRepository
	Notifications *notificationRepository
	School        *schoolRepository
}

func Open(conf *core.Config, logger core.Logger) (*DB, error) {
	dir := conf.Database.Dir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating data dir")
	}
	return &DB{
		Users:         newUserRepository(dir, logger),
		Notifications: newNotificationRepository(dir, logger),
		School:        newSchoolRepository(dir, logger),
	}, nil
}

// load reads a collection document into dst. A missing or malformed file is
// never fatal: it is logged and dst is left empty.
func load(dir, filename string, dst interface{}, logger core.Logger) {
	path := filepath.Join(dir, filename)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Error(fmt.Sprintf("loading %s", filename), err)
		}
		return
	}
	if err := json.Unmarshal(data, dst); err != nil {
		logger.Error(fmt.Sprintf("loading %s: falling back to an empty collection", filename), err)
	}
}

// save rewrites the whole collection document. Callers must hold the
// collection's write lock.
func save(dir, filename string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "marshalling %s", filename)
	}
	if err := os.WriteFile(filepath.Join(dir, filename), data, 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", filename)
	}
	return nil
}
