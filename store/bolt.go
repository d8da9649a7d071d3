package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	bolt "github.com/boltdb/bolt"
	"github.com/embedsql/embedsql/dberrors"
)

// Bolt is a page-backed Store, one bucket per table, keyed by an 8-byte
// big-endian slot number. It trades the Memory store's speed for rows
// that survive a process restart.
type Bolt struct {
	db     *bolt.DB
	bucket []byte
}

// OpenBolt opens (creating if absent) a bolt-backed store for one table
// inside db's single bucket namespace, so multiple tables can share a
// *bolt.DB file.
func OpenBolt(db *bolt.DB, tableName string) (*Bolt, error) {
	bucket := []byte("table:" + tableName)
	err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("embedsql: open bolt store: %w", err)
	}
	return &Bolt{db: db, bucket: bucket}, nil
}

func slotKey(slot int) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(slot))
	return b[:]
}

func (b *Bolt) Append(row Row) (int, error) {
	var slot int
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(b.bucket)
		slot = bucket.Stats().KeyN
		data, err := json.Marshal(row)
		if err != nil {
			return err
		}
		return bucket.Put(slotKey(slot), data)
	})
	if err != nil {
		return 0, fmt.Errorf("embedsql: append row: %w", err)
	}
	return slot, nil
}

func (b *Bolt) Overwrite(slot int, row Row) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(b.bucket)
		if bucket.Get(slotKey(slot)) == nil {
			return dberrors.ErrLookup.New("slot out of range")
		}
		data, err := json.Marshal(row)
		if err != nil {
			return err
		}
		return bucket.Put(slotKey(slot), data)
	})
}

func (b *Bolt) Read(slot int) (Row, error) {
	var row Row
	err := b.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(b.bucket).Get(slotKey(slot))
		if data == nil {
			return dberrors.ErrLookup.New("slot out of range")
		}
		return json.Unmarshal(data, &row)
	})
	if err != nil {
		return nil, err
	}
	return row, nil
}

func (b *Bolt) Slice(start, stop int) ([]Row, error) {
	var out []Row
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(b.bucket)
		n := bucket.Stats().KeyN
		if start < 0 {
			start = 0
		}
		if stop < 0 || stop > n {
			stop = n
		}
		for slot := start; slot < stop; slot++ {
			data := bucket.Get(slotKey(slot))
			if data == nil {
				continue
			}
			var row Row
			if err := json.Unmarshal(data, &row); err != nil {
				return err
			}
			out = append(out, row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (b *Bolt) Len() int {
	n := 0
	b.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(b.bucket).Stats().KeyN
		return nil
	})
	return n
}
