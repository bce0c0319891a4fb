package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Medication struct {
	MedicationID string `json:"medicationID" gorm:"primaryKey;size:36"`
	Name         string `json:"name"`
	Dosage       string `json:"dosage"`
	Schedule     string `json:"schedule"`
	Notes        string `json:"notes"`
	UserID       string `json:"userID" gorm:"not null;index;size:36"`
	BaseModel
}

func (medication *Medication) OwnerID() string {
	return medication.UserID
}

// MedicationFields are the editable fields of a medication
type MedicationFields struct {
	Name     string
	Dosage   string
	Schedule string
	Notes    string
}

type MedicationStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewMedicationStore(db *gorm.DB) *MedicationStore {
	return &MedicationStore{db: db, now: time.Now}
}

func (store *MedicationStore) Create(ownerID string, fields MedicationFields) (*Medication, error) {
	if err := userExists(store.db, ownerID); err != nil {
		return nil, err
	}

	now := store.now()
	medication := &Medication{
		MedicationID: uuid.NewString(),
		Name:         fields.Name,
		Dosage:       fields.Dosage,
		Schedule:     fields.Schedule,
		Notes:        fields.Notes,
		UserID:       ownerID,
		BaseModel:    BaseModel{CreatedAt: now, UpdatedAt: now},
	}

	err := store.db.Create(medication).Error
	if err != nil {
		return nil, errors.Wrap(err, "create medication")
	}

	return medication, nil
}

// Update replaces every editable field of the medication owned by ownerID
func (store *MedicationStore) Update(id, ownerID string, fields MedicationFields) (*Medication, error) {
	medication := &Medication{}
	if err := findOwned(store.db, medication, "medication_id", id, ownerID); err != nil {
		return nil, err
	}

	now := store.now()
	err := store.db.Model(&Medication{}).Where("medication_id = ?", id).Updates(map[string]interface{}{
		"name":       fields.Name,
		"dosage":     fields.Dosage,
		"schedule":   fields.Schedule,
		"notes":      fields.Notes,
		"updated_at": now,
	}).Error
	if err != nil {
		return nil, errors.Wrap(err, "update medication")
	}

	medication.Name = fields.Name
	medication.Dosage = fields.Dosage
	medication.Schedule = fields.Schedule
	medication.Notes = fields.Notes
	medication.UpdatedAt = now

	return medication, nil
}

func (store *MedicationStore) Delete(id, ownerID string) error {
	if err := findOwned(store.db, &Medication{}, "medication_id", id, ownerID); err != nil {
		return err
	}

	err := store.db.Where("medication_id = ?", id).Delete(&Medication{}).Error
	return errors.Wrap(err, "delete medication")
}

func (store *MedicationStore) ListByOwner(ownerID string) ([]Medication, error) {
	medications := []Medication{}
	err := store.db.Where("user_id = ?", ownerID).Order("created_at, medication_id").Find(&medications).Error
	if err != nil {
		return nil, errors.Wrap(err, "list medications")
	}

	return medications, nil
}
