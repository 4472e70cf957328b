package inmemdb

import (
	"sort"
	"strings"
	"sync"

	"github.com/campusbuddy/helpdesk/core"
	"github.com/campusbuddy/helpdesk/core/collegedata"
	"github.com/campusbuddy/helpdesk/core/profile"
	"github.com/campusbuddy/helpdesk/core/syncspot"
)

// DB is an in-memory stand-in for the postgres database, used by tests and local demos.
type DB struct {
	mu        sync.RWMutex
	profiles  []profile.Profile // insertion order
	records   []collegedata.Record
	questions []syncspot.Question
	answers   []syncspot.Answer
}

func NewDB() *DB {
	db := new(DB)
	db.Reset()
	return db
}

// Reset empties all tables.
func (db *DB) Reset() {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.profiles = nil
	db.records = nil
	db.questions = nil
	db.answers = nil
}

type compareFunc[T any] func(a, b T) int

// sortBy sorts items by the given orderings, using the compare funcs of the known fields.
// Unknown fields are ignored. Ties keep the insertion order of items.
func sortBy[T any](items []T, ordering []core.DBOrdering, fields map[string]compareFunc[T]) {
	sort.SliceStable(items, func(i, j int) bool {
		for _, ord := range ordering {
			cmp, ok := fields[ord.Field]
			if !ok {
				continue
			}
			c := cmp(items[i], items[j])
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
