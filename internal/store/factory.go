package store

import (
	"fmt"

	"gorm.io/gorm"
)

// New selects a Store implementation by driver name. "postgres" (the
// default) requires an open GORM connection; "memory" is for
// single-node runs without durability and for tests.
func New(driver string, db *gorm.DB) (Store, error) {
	switch driver {
	case "", "postgres":
		if db == nil {
			return nil, fmt.Errorf("postgres store requires a database connection")
		}
		return NewGormStore(db), nil
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
