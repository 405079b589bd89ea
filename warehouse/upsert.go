package warehouse

import (
	"context"
	"errors"
	"fmt"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func isDuplicateKeyErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return false
}

// upsert writes row keyed by its unique mongo_id in one statement and returns
// the surviving row's id. archived_at and synced_at are always overwritten,
// so a re-synced row is un-archived.
func upsert[T any](ctx context.Context, db *gorm.DB, row *T, mongoId string, columns ...string) (uint, error) {
	columns = append(columns, "archived_at", "synced_at")
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "mongo_id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(row).Error
	// a racing writer can still win on drivers without native upsert support
	if err != nil && !isDuplicateKeyErr(err) {
		return 0, fmt.Errorf("upsert %T %s: %w", row, mongoId, err)
	}

	id, found, err := idByMongoId[T](ctx, db, mongoId)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, fmt.Errorf("upsert %T %s: row missing after write", row, mongoId)
	}
	return id, nil
}

func idByMongoId[T any](ctx context.Context, db *gorm.DB, mongoId string) (uint, bool, error) {
	var ids []uint
	err := db.WithContext(ctx).Model(new(T)).Where("mongo_id = ?", mongoId).Limit(1).Pluck("id", &ids).Error
	if err != nil {
		return 0, false, fmt.Errorf("lookup %T %s: %w", new(T), mongoId, err)
	}
	if len(ids) == 0 {
		return 0, false, nil
	}
	return ids[0], true, nil
}
