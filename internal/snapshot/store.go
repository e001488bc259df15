// Package snapshot keeps the live order events of a simulation in id order
// and writes or restores them as a single checkpoint document.
package snapshot

import (
	"errors"
	"fmt"

	simplejson "github.com/bitly/go-simplejson"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/btree"

	"marketsim/internal/common"
	"marketsim/internal/jsondoc"
	"marketsim/internal/order"
)

var ErrDuplicateOrder = errors.New("duplicate order id")

type entry struct {
	id    common.OrderID
	event *order.Event
}

// Store is not safe for concurrent use; the owning book sequences access.
type Store struct {
	id     uuid.UUID
	events *btree.BTreeG[entry]
}

// New creates an empty store with a fresh snapshot id.
func New() *Store {
	return newStore(uuid.New())
}

func newStore(id uuid.UUID) *Store {
	// Sorted by order id, lowest first.
	events := btree.NewBTreeG(func(a, b entry) bool {
		return a.id < b.id
	})
	return &Store{id: id, events: events}
}

// ID identifies the snapshot lineage. It survives checkpoint and restore.
func (s *Store) ID() uuid.UUID { return s.id }

func (s *Store) Len() int { return s.events.Len() }

// Put inserts ev, replacing any event for the same order id. Returns whether
// an event was replaced.
func (s *Store) Put(ev *order.Event) bool {
	_, replaced := s.events.Set(entry{id: ev.Order.ID(), event: ev})
	return replaced
}

func (s *Store) Get(id common.OrderID) (*order.Event, bool) {
	e, ok := s.events.Get(entry{id: id})
	return e.event, ok
}

func (s *Store) Remove(id common.OrderID) bool {
	_, ok := s.events.Delete(entry{id: id})
	return ok
}

// Scan calls iter for each event in ascending order id until iter returns false.
func (s *Store) Scan(iter func(ev *order.Event) bool) {
	s.events.Scan(func(e entry) bool {
		return iter(e.event)
	})
}

// Checkpoint writes {"snapshotId": ..., "events": [...]} with every event in
// its checkpoint form.
func (s *Store) Checkpoint(doc *simplejson.Json, key string) {
	s.serialize(doc, key, (*order.Event).SerializeForCheckpoint)
}

// Report writes the same shape as Checkpoint using report records.
func (s *Store) Report(doc *simplejson.Json, key string) {
	s.serialize(doc, key, (*order.Event).SerializeForReport)
}

func (s *Store) serialize(
	doc *simplejson.Json,
	key string,
	write func(*order.Event, *simplejson.Json, string),
) {
	jsondoc.Serialize(doc, key, func(d *simplejson.Json) {
		records := make([]any, 0, s.events.Len())
		s.Scan(func(ev *order.Event) bool {
			rec := jsondoc.New()
			write(ev, rec, "")
			records = append(records, rec.Interface())
			return true
		})
		d.Set("snapshotId", s.id.String())
		d.Set("events", records)
	})
}

// Restore rebuilds a store from a document written by Checkpoint. Limit order
// volumes are rounded to volumeDecimals.
func Restore(doc *simplejson.Json, priceDecimals, volumeDecimals int) (*Store, error) {
	v, err := jsondoc.Member(doc, "snapshotId")
	if err != nil {
		return nil, fmt.Errorf("restore snapshot: %w", err)
	}
	raw, _ := v.String()
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("restore snapshot: %w: snapshotId: %w", jsondoc.ErrMalformed, err)
	}

	events, err := jsondoc.Member(doc, "events")
	if err != nil {
		return nil, fmt.Errorf("restore snapshot %s: %w", id, err)
	}
	arr, err := events.Array()
	if err != nil {
		return nil, fmt.Errorf("restore snapshot %s: %w: events is not an array", id, jsondoc.ErrMalformed)
	}

	s := newStore(id)
	for i := range arr {
		ev, err := order.EventFromCheckpointWithPrecision(events.GetIndex(i), priceDecimals, volumeDecimals)
		if err != nil {
			return nil, fmt.Errorf("restore snapshot %s: event %d: %w", id, i, err)
		}
		if s.Put(ev) {
			return nil, fmt.Errorf("restore snapshot %s: %w: %d", id, ErrDuplicateOrder, ev.Order.ID())
		}
	}

	log.Debug().
		Str("snapshot", id.String()).
		Int("events", s.Len()).
		Msg("snapshot restored")
	return s, nil
}
