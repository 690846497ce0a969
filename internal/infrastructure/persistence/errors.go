package persistence

import (
	"errors"

	"github.com/seafresh/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// translate maps GORM errors onto domain sentinels. The connection must be
// opened with TranslateError so unique violations surface as ErrDuplicatedKey.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return shared.ErrAlreadyExists
	}
	return err
}
