package models

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type BaseModel struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ownedRecord is a record scoped to the user that created it
type ownedRecord interface {
	OwnerID() string
}

// IsValidPhoneNumber reports whether phoneNumber is exactly 10 ASCII digits
func IsValidPhoneNumber(phoneNumber string) bool {
	if len(phoneNumber) != 10 {
		return false
	}

	for _, r := range phoneNumber {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func findBy(db *gorm.DB, dest interface{}, field string, value interface{}) error {
	err := db.First(dest, fmt.Sprintf("%v = ?", field), value).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}

	return errors.Wrapf(err, "find by %v", field)
}

// findOwned loads the record identified by id into dest and checks that ownerID owns it
func findOwned(db *gorm.DB, dest ownedRecord, idField string, id interface{}, ownerID string) error {
	if err := findBy(db, dest, idField, id); err != nil {
		return err
	}

	if dest.OwnerID() != ownerID {
		return ErrForbidden
	}
	return nil
}

func userExists(db *gorm.DB, userID string) error {
	var count int64
	err := db.Model(&User{}).Where("user_id = ?", userID).Count(&count).Error
	if err != nil {
		return errors.Wrap(err, "count users")
	}

	if count == 0 {
		return ErrNotFound
	}
	return nil
}
