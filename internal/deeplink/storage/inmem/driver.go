package inmem

import (
	"context"
	"github.com/hashicorp/go-memdb"
	"github.com/skybi/deeplink-proxy/internal/deeplink"
	"time"
)

const table = "links"

var dbSchema = &memdb.DBSchema{
	Tables: map[string]*memdb.TableSchema{
		table: {
			Name: table,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:         "id",
					Unique:       true,
					AllowMissing: false,
					Indexer:      &memdb.StringFieldIndex{Field: "ID"},
				},
				"sequence": {
					Name:         "sequence",
					Unique:       true,
					AllowMissing: false,
					Indexer:      &memdb.UintFieldIndex{Field: "Sequence"},
				},
				"created": {
					Name:         "created",
					Unique:       false,
					AllowMissing: false,
					Indexer:      &memdb.IntFieldIndex{Field: "Created"},
				},
			},
		},
	},
}

// Driver represents the in-memory deeplink history storage driver built using hashicorp/go-memdb
type Driver struct {
	db       *memdb.MemDB
	sequence uint64
}

var _ deeplink.Storage = (*Driver)(nil)

// New creates a new empty in-memory deeplink history storage driver
func New() (*Driver, error) {
	db, err := memdb.NewMemDB(dbSchema)
	if err != nil {
		return nil, err
	}
	return &Driver{db: db}, nil
}

// Insert records all given links or none of them
func (driver *Driver) Insert(_ context.Context, links ...*deeplink.GeneratedLink) error {
	txn := driver.db.Txn(true)
	defer txn.Abort()

	// Write transactions are serialized, so the counter is only touched by one writer at a time
	next := driver.sequence
	for _, link := range links {
		next++
		link.Sequence = next
		if err := txn.Insert(table, link); err != nil {
			return err
		}
	}

	txn.Commit()
	driver.sequence = next
	return nil
}

// List retrieves a page of links, newest first
func (driver *Driver) List(_ context.Context, offset, limit int) ([]*deeplink.GeneratedLink, error) {
	if limit <= 0 {
		return []*deeplink.GeneratedLink{}, nil
	}
	txn := driver.db.Txn(false)
	it, err := txn.GetReverse(table, "sequence")
	if err != nil {
		return nil, err
	}

	links := make([]*deeplink.GeneratedLink, 0, limit)
	skipped := 0
	for obj := it.Next(); obj != nil && len(links) < limit; obj = it.Next() {
		if skipped < offset {
			skipped++
			continue
		}
		links = append(links, obj.(*deeplink.GeneratedLink))
	}
	return links, nil
}

// Count returns the total amount of recorded links
func (driver *Driver) Count(_ context.Context) (int, error) {
	txn := driver.db.Txn(false)
	it, err := txn.Get(table, "id")
	if err != nil {
		return 0, err
	}
	count := 0
	for obj := it.Next(); obj != nil; obj = it.Next() {
		count++
	}
	return count, nil
}

// Clear removes every recorded link
func (driver *Driver) Clear(_ context.Context) error {
	txn := driver.db.Txn(true)
	defer txn.Abort()
	if _, err := txn.DeleteAll(table, "id"); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

// PruneBefore removes all links generated before the given instant
func (driver *Driver) PruneBefore(_ context.Context, instant time.Time) (int, error) {
	txn := driver.db.Txn(true)
	defer txn.Abort()

	it, err := txn.LowerBound(table, "created", int64(0))
	if err != nil {
		return 0, err
	}

	threshold := instant.UnixNano()
	var expired []any
	for obj := it.Next(); obj != nil; obj = it.Next() {
		if obj.(*deeplink.GeneratedLink).Created >= threshold {
			break
		}
		expired = append(expired, obj)
	}
	for _, obj := range expired {
		if err := txn.Delete(table, obj); err != nil {
			return 0, err
		}
	}

	txn.Commit()
	return len(expired), nil
}
