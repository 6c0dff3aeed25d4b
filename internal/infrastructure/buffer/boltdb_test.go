package buffer

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func openStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "buffer.db"), "", opts...)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStoreKeepsReplayOrder(t *testing.T) {
	s := openStore(t)
	ops := []string{OperationCreate, OperationUpdate, OperationDelete}
	for _, op := range ops {
		if err := s.Enqueue(Item{Entity: EntityTask, EntityID: "t1", Operation: op, Data: []byte(`{"id":"t1"}`)}); err != nil {
			t.Fatalf("enqueue %s: %v", op, err)
		}
	}

	items, err := s.Pending(10)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	for i, op := range ops {
		if items[i].Operation != op {
			t.Fatalf("item %d operation = %s, want %s", i, items[i].Operation, op)
		}
		if items[i].Key() != "task:t1" || string(items[i].Data) != `{"id":"t1"}` {
			t.Fatalf("unexpected item %+v", items[i])
		}
	}
	if items[0].Seq() >= items[1].Seq() {
		t.Fatal("sequence should increase")
	}
}

func TestStoreAckAndRetry(t *testing.T) {
	s := openStore(t)
	_ = s.Enqueue(Item{Entity: EntityTask, EntityID: "a", Operation: OperationCreate})
	_ = s.Enqueue(Item{Entity: EntityTask, EntityID: "b", Operation: OperationCreate})

	items, _ := s.Pending(10)
	retried, err := s.Retry(items[0])
	if err != nil || retried.Retries != 1 {
		t.Fatalf("retry: %+v %v", retried, err)
	}
	if err := s.Ack(items[1]); err != nil {
		t.Fatalf("ack: %v", err)
	}

	items, _ = s.Pending(10)
	if len(items) != 1 || items[0].EntityID != "a" || items[0].Retries != 1 {
		t.Fatalf("unexpected pending %+v", items)
	}
	if n, _ := s.Size(); n != 1 {
		t.Fatalf("size = %d, want 1", n)
	}
}

func TestStoreMaxSize(t *testing.T) {
	s := openStore(t, WithMaxSize(1))
	if err := s.Enqueue(Item{Entity: EntityProfile, EntityID: "u1"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := s.Enqueue(Item{Entity: EntityProfile, EntityID: "u1"}); !errors.Is(err, ErrFull) {
		t.Fatalf("expected ErrFull, got %v", err)
	}
}

func TestStorePrune(t *testing.T) {
	s := openStore(t)
	old := time.Now().Add(-48 * time.Hour)
	_ = s.Enqueue(Item{Entity: EntityTask, EntityID: "old1", Timestamp: old})
	_ = s.Enqueue(Item{Entity: EntityTask, EntityID: "fresh"})
	_ = s.Enqueue(Item{Entity: EntityTask, EntityID: "old2", Timestamp: old})

	removed, err := s.Prune(time.Now().Add(-24 * time.Hour))
	if err != nil || removed != 2 {
		t.Fatalf("prune removed %d, err %v", removed, err)
	}
	items, _ := s.Pending(10)
	if len(items) != 1 || items[0].EntityID != "fresh" {
		t.Fatalf("unexpected pending %+v", items)
	}
}

func TestPendingDropsUndecodableEntries(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	s := openStore(t, WithLogger(zap.New(core)))
	if err := s.Enqueue(Item{Entity: EntityTask, EntityID: "t1", Operation: OperationCreate}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucket).Put(seqKey(99), []byte("not json"))
	}); err != nil {
		t.Fatalf("write corrupt entry: %v", err)
	}

	items, err := s.Pending(10)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(items) != 1 || items[0].EntityID != "t1" {
		t.Fatalf("unexpected pending %+v", items)
	}
	if logs.FilterMessage("dropping undecodable buffered write").Len() != 1 {
		t.Fatalf("expected one warning, got %v", logs.All())
	}
	if n, err := s.Size(); err != nil || n != 1 {
		t.Fatalf("corrupt entry should be deleted, size %d err %v", n, err)
	}
}

func TestClosedStore(t *testing.T) {
	var s *Store
	if err := s.Enqueue(Item{}); err == nil {
		t.Fatal("expected error from nil store")
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close nil store: %v", err)
	}
}
