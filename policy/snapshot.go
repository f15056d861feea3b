package policy

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"io/ioutil"

	"github.com/boltdb/bolt"
	"github.com/sirupsen/logrus"
)

var snapshotBucket = []byte("policy_snapshots")

// LoadCached behaves like Load but stores the raw policy file bytes in a
// bolt database keyed by their sha1. On a hit the cached bytes are used,
// but they are still JSON-decoded and validated again, exactly as on a
// miss; the snapshot does not skip parsing. dbPath
// may be shared across many policy files; entries for other hashes are
// left untouched.
func LoadCached(path, dbPath string, log *logrus.Logger) (*Store, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, ErrPolicyFile.Wrap(err)
	}
	sum := sha1.Sum(raw)
	key := []byte(hex.EncodeToString(sum[:]))

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		// A snapshot cache is an optimization, not a dependency: fall back
		// to an uncached load rather than fail the whole rewrite.
		if log != nil {
			log.WithField("err", err).Warn("policy snapshot cache unavailable, loading uncached")
		}
		return loadFromBytes(raw, log)
	}
	defer db.Close()

	var cached []byte
	err = db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(snapshotBucket)
		if b == nil {
			return nil
		}
		if v := b.Get(key); v != nil {
			cached = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if cached != nil {
		var entries []rawEntry
		if err := json.Unmarshal(cached, &entries); err != nil {
			return nil, ErrPolicyFile.Wrap(err)
		}
		return build(entries, log)
	}

	var entries []rawEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, ErrPolicyFile.Wrap(err)
	}
	store, err := build(entries, log)
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(snapshotBucket)
		if err != nil {
			return err
		}
		return b.Put(key, raw)
	})
	if err != nil && log != nil {
		log.WithField("err", err).Warn("failed writing policy snapshot cache")
	}

	return store, nil
}

func loadFromBytes(raw []byte, log *logrus.Logger) (*Store, error) {
	var entries []rawEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, ErrPolicyFile.Wrap(err)
	}
	return build(entries, log)
}
