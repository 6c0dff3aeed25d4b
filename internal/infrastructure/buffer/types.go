package buffer

import (
	"time"

	"github.com/google/uuid"
)

const (
	EntityProfile = "profile"
	EntityTask    = "task"

	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
)

// Item is a write that could not reach the primary store and waits for replay.
// Items are replayed in the order they were enqueued.
type Item struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Entity    string    `json:"entity"`
	EntityID  string    `json:"entity_id"`
	Operation string    `json:"operation"`
	Data      []byte    `json:"data"`
	Retries   int       `json:"retries"`
	Timestamp time.Time `json:"timestamp"`

	seq uint64
}

// Seq is the replay position assigned on enqueue.
func (i Item) Seq() uint64 { return i.seq }

// Key groups items that must be replayed in order, e.g. all writes of one task.
func (i Item) Key() string { return i.Entity + ":" + i.EntityID }

func (i *Item) normalize(now time.Time) {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Timestamp.IsZero() {
		i.Timestamp = now
	}
}
