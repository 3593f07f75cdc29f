package ownership

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ForOwner returns a GORM scope that restricts rows to those owned by actor.
// A nil actor leaves the query unscoped; only trusted administrative callers
// pass nil.
func ForOwner(actor *uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if actor == nil {
			return db
		}
		return db.Where("user_id = ?", *actor)
	}
}
