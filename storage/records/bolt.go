package records

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"os"
	"time"

	"github.com/boltdb/bolt"
	"github.com/pkg/errors"
)

const patientsBucket = "patients"

var dbPermissions os.FileMode = 0600

// lockTimeout bounds how long a load waits for an import holding the file lock.
const lockTimeout = 2 * time.Second

// BoltSource reads the collection from a bolt database. Each record is stored
// under a big-endian sequence key, so cursor order is collection order.
type BoltSource struct {
	path string
}

func NewBoltSource(path string) *BoltSource {
	return &BoltSource{path: path}
}

func (s *BoltSource) Path() string {
	return s.path
}

func (s *BoltSource) Name() string {
	return "bolt"
}

func (s *BoltSource) Load(ctx context.Context) ([]json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, loadError(err)
	}
	// bolt creates missing files even in read-only mode
	if _, err := os.Stat(s.path); err != nil {
		return nil, loadError(err)
	}

	db, err := bolt.Open(s.path, dbPermissions, &bolt.Options{ReadOnly: true, Timeout: lockTimeout})
	if err != nil {
		return nil, loadError(errors.Wrapf(err, "opening %s", s.path))
	}
	defer db.Close()

	entries := []json.RawMessage{}
	err = db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(patientsBucket))
		if b == nil {
			return errors.Errorf("bucket %q does not exist", patientsBucket)
		}

		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if !json.Valid(v) {
				return errors.Errorf("entry %d is not valid JSON", binary.BigEndian.Uint64(k))
			}
			// values are only valid for the life of the transaction
			entry := make(json.RawMessage, len(v))
			copy(entry, v)
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, loadError(err)
	}
	return entries, nil
}

// Import replaces the contents of the bolt database at path with entries,
// keeping their order. The file is created when missing.
func Import(path string, entries []json.RawMessage) error {
	db, err := bolt.Open(path, dbPermissions, &bolt.Options{Timeout: lockTimeout})
	if err != nil {
		return errors.Wrapf(err, "opening %s", path)
	}
	defer db.Close()

	return db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(patientsBucket)) != nil {
			if err := tx.DeleteBucket([]byte(patientsBucket)); err != nil {
				return err
			}
		}
		b, err := tx.CreateBucket([]byte(patientsBucket))
		if err != nil {
			return err
		}

		for i, entry := range entries {
			if !json.Valid(entry) {
				return errors.Errorf("entry %d is not valid JSON", i)
			}
			seq, err := b.NextSequence()
			if err != nil {
				return err
			}
			if err := b.Put(itob(seq), entry); err != nil {
				return errors.Wrapf(err, "storing entry %d", i)
			}
		}
		return nil
	})
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
