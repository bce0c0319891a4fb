package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var (
	allFieldsExceptPassword = []string{"user_id",
		"first_name",
		"last_name",
		"email",
		"gender",
		"phone_number",
		"dob",
		"created_at",
		"updated_at",
	}

	// request field -> column
	updatableFields = map[string]string{
		"fname":       "first_name",
		"lname":       "last_name",
		"phoneNumber": "phone_number",
		"dob":         "dob",
		"gender":      "gender",
	}
)

type User struct {
	UserID       string       `json:"userID" gorm:"primaryKey;size:36"`
	FirstName    string       `json:"fname"`
	LastName     string       `json:"lname"`
	Email        string       `json:"email" gorm:"not null;uniqueIndex"`
	PasswordHash string       `json:"-" gorm:"not null"`
	Gender       string       `json:"gender"`
	PhoneNumber  string       `json:"phoneNumber"`
	DOB          string       `json:"dob" gorm:"column:dob"`
	Medications  []Medication `json:"-" gorm:"foreignKey:UserID;references:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Contacts     []Contact    `json:"-" gorm:"foreignKey:UserID;references:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	BaseModel
}

type PasswordHasher interface {
	Hash(password string) (string, error)
}

// UserStore persists one record per email address
type UserStore struct {
	db     *gorm.DB
	hasher PasswordHasher
	now    func() time.Time
}

func NewUserStore(db *gorm.DB, hasher PasswordHasher) *UserStore {
	return &UserStore{db: db, hasher: hasher, now: time.Now}
}

// Create stores user with a new id and the hash of password.
// It returns ErrConflict if the email is already taken.
func (store *UserStore) Create(user *User, password string) error {
	_, err := store.FindByEmail(user.Email)
	if err == nil {
		return ErrConflict
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}

	passwordHash, err := store.hasher.Hash(password)
	if err != nil {
		return err
	}

	now := store.now()
	user.UserID = uuid.NewString()
	user.PasswordHash = passwordHash
	user.CreatedAt = now
	user.UpdatedAt = now

	err = store.db.Create(user).Error
	if err != nil && isDuplicateKeyErr(err) {
		return ErrConflict
	}

	return errors.Wrap(err, "create user")
}

func (store *UserStore) FindByEmail(email string) (*User, error) {
	user := User{}
	err := findBy(store.db.Select(allFieldsExceptPassword), &user, "email", email)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (store *UserStore) PasswordHash(email string) (string, error) {
	user := User{}
	err := findBy(store.db.Select("password_hash"), &user, "email", email)
	if err != nil {
		return "", err
	}

	return user.PasswordHash, nil
}

// UpdateFields overwrites only the known fields present in data. Unknown keys are ignored.
func (store *UserStore) UpdateFields(email string, data map[string]interface{}) (*User, error) {
	updates := make(map[string]interface{})
	for field, column := range updatableFields {
		value, ok := data[field]
		if !ok {
			continue
		}

		valueStr, ok := value.(string)
		if !ok && field == "phoneNumber" {
			return nil, ErrInvalidPhoneNumber
		}
		if !ok {
			return nil, &InputError{Field: field, Message: fmt.Sprintf("Invalid %v", field)}
		}
		updates[column] = valueStr
	}

	if phoneNumber, ok := updates["phone_number"]; ok && !IsValidPhoneNumber(phoneNumber.(string)) {
		return nil, ErrInvalidPhoneNumber
	}

	user, err := store.FindByEmail(email)
	if err != nil {
		return nil, err
	}

	if len(updates) == 0 {
		return user, nil
	}

	updates["updated_at"] = store.now()
	err = store.db.Model(&User{}).Where("email = ?", email).Updates(updates).Error
	if err != nil {
		return nil, errors.Wrap(err, "update user")
	}

	return store.FindByEmail(email)
}
