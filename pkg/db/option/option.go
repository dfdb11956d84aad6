// Package option provides reusable GORM scopes shared by the services.
package option

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LockingUpdate acquires a FOR UPDATE row lock inside the current
// transaction. SQLite (used by the test suite) has no SELECT ... FOR UPDATE;
// there a single writer connection already serializes transactions, so the
// scope is a no-op.
func LockingUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "sqlite" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}
