package db

import (
	"errors"

	"gorm.io/gorm"

	"chorus/social-service/services"
)

// translate maps gorm's not-found error onto the store contract.
func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return services.ErrNotFound
	}
	return err
}
