package canvas

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// IDGenerator mints widget and dashboard identifiers.
type IDGenerator interface {
	// WidgetID returns an id for the ordinal-th widget created at the same instant.
	WidgetID(at time.Time, ordinal int) string
	DashboardID() string
}

// TimestampIDs derives widget ids from the creation time plus an ordinal and
// dashboard ids from random UUIDs.
type TimestampIDs struct{}

// WidgetID formats "<unix millis>-<ordinal>".
func (TimestampIDs) WidgetID(at time.Time, ordinal int) string {
	return strconv.FormatInt(at.UnixMilli(), 10) + "-" + strconv.Itoa(ordinal)
}

// DashboardID returns a random UUID string.
func (TimestampIDs) DashboardID() string {
	return uuid.NewString()
}

// idBatch hands out widget ids that are unique against a set of taken ids.
// Ordinals keep counting past collisions so ids inside one batch stay ordered.
type idBatch struct {
	gen     IDGenerator
	at      time.Time
	ordinal int
	taken   map[string]struct{}
}

func newIDBatch(gen IDGenerator, at time.Time, taken map[string]struct{}) *idBatch {
	if taken == nil {
		taken = map[string]struct{}{}
	}
	return &idBatch{gen: gen, at: at, taken: taken}
}

func (b *idBatch) next() string {
	for {
		id := b.gen.WidgetID(b.at, b.ordinal)
		b.ordinal++
		if _, exists := b.taken[id]; exists {
			continue
		}
		b.taken[id] = struct{}{}
		return id
	}
}
