package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// runInTransaction commits when fn succeeds and rolls back when it returns
// an error or panics.
func runInTransaction(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) (err error) {
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			err = fmt.Errorf("panic during transaction: %v", r)
		}
	}()

	if fnErr := fn(tx); fnErr != nil {
		tx.Rollback()
		return fnErr
	}

	if commitErr := tx.Commit().Error; commitErr != nil {
		return fmt.Errorf("failed to commit transaction: %w", commitErr)
	}
	return nil
}
