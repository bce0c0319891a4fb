package models

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Contact struct {
	ContactID    uint   `json:"contactID" gorm:"primaryKey"`
	FirstName    string `json:"fname"`
	LastName     string `json:"lname"`
	PhoneNumber  string `json:"phoneNumber"`
	Relationship string `json:"relationship"`
	UserID       string `json:"userID" gorm:"not null;index;size:36"`
	BaseModel
}

func (contact *Contact) OwnerID() string {
	return contact.UserID
}

// ContactFields are the editable fields of an emergency contact
type ContactFields struct {
	FirstName    string
	LastName     string
	PhoneNumber  string
	Relationship string
}

type ContactStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewContactStore(db *gorm.DB) *ContactStore {
	return &ContactStore{db: db, now: time.Now}
}

// Create stores a contact for ownerID; the contact id is assigned by the db
func (store *ContactStore) Create(ownerID string, fields ContactFields) (*Contact, error) {
	if err := userExists(store.db, ownerID); err != nil {
		return nil, err
	}

	now := store.now()
	contact := &Contact{
		FirstName:    fields.FirstName,
		LastName:     fields.LastName,
		PhoneNumber:  fields.PhoneNumber,
		Relationship: fields.Relationship,
		UserID:       ownerID,
		BaseModel:    BaseModel{CreatedAt: now, UpdatedAt: now},
	}

	err := store.db.Create(contact).Error
	if err != nil {
		return nil, errors.Wrap(err, "create contact")
	}

	return contact, nil
}

// Update replaces every editable field of the contact owned by ownerID
func (store *ContactStore) Update(id uint, ownerID string, fields ContactFields) (*Contact, error) {
	contact := &Contact{}
	if err := findOwned(store.db, contact, "contact_id", id, ownerID); err != nil {
		return nil, err
	}

	now := store.now()
	err := store.db.Model(&Contact{}).Where("contact_id = ?", id).Updates(map[string]interface{}{
		"first_name":   fields.FirstName,
		"last_name":    fields.LastName,
		"phone_number": fields.PhoneNumber,
		"relationship": fields.Relationship,
		"updated_at":   now,
	}).Error
	if err != nil {
		return nil, errors.Wrap(err, "update contact")
	}

	contact.FirstName = fields.FirstName
	contact.LastName = fields.LastName
	contact.PhoneNumber = fields.PhoneNumber
	contact.Relationship = fields.Relationship
	contact.UpdatedAt = now

	return contact, nil
}

func (store *ContactStore) Delete(id uint, ownerID string) error {
	if err := findOwned(store.db, &Contact{}, "contact_id", id, ownerID); err != nil {
		return err
	}

	err := store.db.Where("contact_id = ?", id).Delete(&Contact{}).Error
	return errors.Wrap(err, "delete contact")
}

func (store *ContactStore) ListByOwner(ownerID string) ([]Contact, error) {
	contacts := []Contact{}
	err := store.db.Where("user_id = ?", ownerID).Order("created_at, contact_id").Find(&contacts).Error
	if err != nil {
		return nil, errors.Wrap(err, "list contacts")
	}

	return contacts, nil
}
