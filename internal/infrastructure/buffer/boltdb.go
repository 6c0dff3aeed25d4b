package buffer

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"
)

// ErrFull is returned by Enqueue once the configured capacity is reached.
var ErrFull = errors.New("buffer is full")

// Store persists pending writes in BoltDB while Postgres is unreachable.
type Store struct {
	db      *bolt.DB
	bucket  []byte
	maxSize int
	now     func() time.Time
	logger  *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithMaxSize caps the number of pending items. Zero means unlimited.
func WithMaxSize(n int) Option {
	return func(s *Store) { s.maxSize = n }
}

// WithLogger sets the logger used to report dropped entries.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Open creates the BoltDB file if needed and ensures the bucket exists.
func Open(path string, bucket string, opts ...Option) (*Store, error) {
	if bucket == "" {
		bucket = "pending_writes"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{db: db, bucket: []byte(bucket), now: time.Now, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Enqueue appends an item at the end of the replay order.
func (s *Store) Enqueue(item Item) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	item.normalize(s.now())

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if s.maxSize > 0 && b.Stats().KeyN >= s.maxSize {
			return ErrFull
		}
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		item.seq = seq
		payload, err := sonic.Marshal(item)
		if err != nil {
			return err
		}
		return b.Put(seqKey(seq), payload)
	})
}

// Pending returns up to limit items in replay order without removing them.
// Entries that no longer decode are logged and deleted in the same pass.
func (s *Store) Pending(limit int) ([]Item, error) {
	if s == nil || s.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}
	if limit <= 0 {
		limit = 50
	}

	var items []Item
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		var corrupt [][]byte
		c := b.Cursor()
		for k, v := c.First(); k != nil && len(items) < limit; k, v = c.Next() {
			var item Item
			if err := sonic.Unmarshal(v, &item); err != nil {
				s.logger.Warn("dropping undecodable buffered write",
					zap.Uint64("seq", binary.BigEndian.Uint64(k)),
					zap.Int("bytes", len(v)),
					zap.Error(err))
				corrupt = append(corrupt, append([]byte(nil), k...))
				continue
			}
			item.seq = binary.BigEndian.Uint64(k)
			items = append(items, item)
		}
		// cursor deletes while iterating skip keys
		for _, k := range corrupt {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Ack removes a replayed item.
func (s *Store) Ack(item Item) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Delete(seqKey(item.seq))
	})
}

// Retry records a failed replay attempt and keeps the item at its position.
func (s *Store) Retry(item Item) (Item, error) {
	if s == nil || s.db == nil {
		return item, bolt.ErrDatabaseNotOpen
	}
	item.Retries++
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		if b.Get(seqKey(item.seq)) == nil {
			return nil
		}
		payload, err := sonic.Marshal(item)
		if err != nil {
			return err
		}
		return b.Put(seqKey(item.seq), payload)
	})
	return item, err
}

// Size returns the number of pending items.
func (s *Store) Size() (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var count int
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(s.bucket).Stats().KeyN
		return nil
	})
	return count, err
}

// Prune drops items enqueued before olderThan and reports how many were removed.
func (s *Store) Prune(olderThan time.Time) (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var removed int
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		var stale [][]byte
		_ = b.ForEach(func(k, v []byte) error {
			var item Item
			if err := sonic.Unmarshal(v, &item); err != nil || item.Timestamp.Before(olderThan) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		removed = len(stale)
		return nil
	})
	return removed, err
}

// Close closes the Bolt database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func seqKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}
