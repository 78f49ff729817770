package persistence

import (
	"errors"

	"github.com/groupbuy/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// translate maps GORM errors onto domain sentinels
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.ErrAlreadyExists
	default:
		return err
	}
}

// paginate applies limit and offset of a normalized filter
func paginate(f shared.Filter) func(*gorm.DB) *gorm.DB {
	f = f.Normalize()
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(f.Offset()).Limit(f.PageSize)
	}
}
