// Package warehouse writes the relational star schema: natural-key upserts
// for dimensions and facts, rate history, and archival.
package warehouse

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Warehouse struct {
	db     *gorm.DB
	logger *logrus.Logger
	clock  func() time.Time
}

func New(db *gorm.DB, logger *logrus.Logger) *Warehouse {
	return &Warehouse{db: db, logger: logger, clock: time.Now}
}

// WithClock returns a copy that stamps synced_at/archived_at from now.
func (w *Warehouse) WithClock(now func() time.Time) *Warehouse {
	cp := *w
	cp.clock = now
	return &cp
}

func (w *Warehouse) DB() *gorm.DB {
	return w.db
}

func (w *Warehouse) now() time.Time {
	return w.clock().UTC()
}

// Tx runs fn against a Warehouse bound to a single transaction.
func (w *Warehouse) Tx(ctx context.Context, fn func(tx *Warehouse) error) error {
	return w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cp := *w
		cp.db = tx
		return fn(&cp)
	})
}

func (w *Warehouse) log(fields logrus.Fields) *logrus.Entry {
	fields["field"] = "warehouse"
	return w.logger.WithFields(fields)
}
