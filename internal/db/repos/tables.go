package repos

import (
	"context"
	"fmt"
	"slices"

	"gorm.io/gorm"

	"github.com/celestiaorg/memberenv/internal/db/models"
)

// TableCounter counts rows in the managed tables
type TableCounter struct {
	db *gorm.DB
}

// NewTableCounter creates a TableCounter
func NewTableCounter(db *gorm.DB) *TableCounter {
	return &TableCounter{db: db}
}

// Count returns the number of rows in table, which must be one of models.ManagedTables
func (c *TableCounter) Count(ctx context.Context, table string) (int64, error) {
	if !slices.Contains(models.ManagedTables, table) {
		return 0, fmt.Errorf("table %q is not managed", table)
	}
	var count int64
	if err := c.db.WithContext(ctx).Table(table).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return count, nil
}

// CountAll returns the row count of every managed table
func (c *TableCounter) CountAll(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64, len(models.ManagedTables))
	for _, table := range models.ManagedTables {
		n, err := c.Count(ctx, table)
		if err != nil {
			return nil, err
		}
		counts[table] = n
	}
	return counts, nil
}
