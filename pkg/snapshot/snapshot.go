// Package snapshot persists the entries of a tree as a YAML document.
package snapshot

import (
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/c9s/ordmap/pkg/rbtree"
	"github.com/c9s/ordmap/pkg/types"
)

var log = logrus.WithField("component", "snapshot")

type Entry = types.Entry[int64, string]

type Document struct {
	Time    time.Time `yaml:"time"`
	Entries []Entry   `yaml:"entries"`
}

// lockPath is the path of the lock file guarding path. The snapshot itself is
// replaced on every save, so it can not carry the lock.
func lockPath(path string) string {
	return path + ".lock"
}

func lock(path string) (unlock func(), err error) {
	fileLock := flock.New(lockPath(path))
	if err := fileLock.Lock(); err != nil {
		return nil, err
	}

	return func() {
		if err := fileLock.Unlock(); err != nil {
			log.WithError(err).Errorf("snapshot file unlock error: %s", path)
		}
	}, nil
}

// Save writes the entries to path. The file is replaced atomically through a
// temporary file in the same directory, while holding the snapshot lock.
func Save(path string, entries []Entry) error {
	unlock, err := lock(path)
	if err != nil {
		return errors.Wrapf(err, "snapshot file lock error: %s", path)
	}
	defer unlock()

	data, err := yaml.Marshal(Document{
		Time:    time.Now().UTC().Truncate(time.Second),
		Entries: entries,
	})
	if err != nil {
		return errors.Wrap(err, "unable to encode snapshot")
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrap(err, "unable to create snapshot file")
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return errors.Wrap(err, "unable to write snapshot")
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return errors.Wrap(err, "unable to write snapshot")
	}

	return errors.Wrap(os.Rename(tmp.Name(), path), "unable to replace snapshot")
}

// Load reads the entries saved at path. A missing file is returned as an error
// satisfying os.IsNotExist after errors.Cause.
func Load(path string) ([]Entry, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.WithStack(err)
	}

	unlock, err := lock(path)
	if err != nil {
		return nil, errors.Wrapf(err, "snapshot file lock error: %s", path)
	}
	defer unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, "unable to decode snapshot %s", path)
	}

	return doc.Entries, nil
}

// Restore upserts the entries into tree and returns the number of new keys.
func Restore(tree *rbtree.Tree[int64, string], entries []Entry) (inserted int) {
	for _, e := range entries {
		if tree.Upsert(e.Key, e.Value) {
			inserted++
		}
	}
	return inserted
}
