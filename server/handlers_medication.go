package server

import (
	"net/http"

	"github.com/Daskott/vitals/server/models"
	"github.com/gorilla/mux"
)

type medicationRequest struct {
	Name     string `json:"name" validate:"required"`
	Dosage   string `json:"dosage" validate:"required"`
	Schedule string `json:"schedule"`
	Notes    string `json:"notes"`
}

func (req medicationRequest) fields() models.MedicationFields {
	return models.MedicationFields{
		Name:     req.Name,
		Dosage:   req.Dosage,
		Schedule: req.Schedule,
		Notes:    req.Notes,
	}
}

func (s *Server) addMedication(rw http.ResponseWriter, r *http.Request) {
	data := medicationRequest{}
	if !s.decodeAndValidate(rw, r, &data) {
		return
	}

	medication, err := s.medications.Create(currentUser(r).UserID, data.fields())
	if err != nil {
		s.writeStoreError(rw, err, "User not found")
		return
	}

	s.writeResponse(rw, ResponsePayload{
		Message:      "Medication added successfully!",
		MedicationID: medication.MedicationID,
	}, http.StatusOK)
}

func (s *Server) getMedications(rw http.ResponseWriter, r *http.Request) {
	medications, err := s.medications.ListByOwner(currentUser(r).UserID)
	if err != nil {
		s.writeStoreError(rw, err, "User not found")
		return
	}

	s.writeJSON(rw, medications, http.StatusOK)
}

func (s *Server) updateMedication(rw http.ResponseWriter, r *http.Request) {
	data := medicationRequest{}
	if !s.decodeAndValidate(rw, r, &data) {
		return
	}

	_, err := s.medications.Update(mux.Vars(r)["id"], currentUser(r).UserID, data.fields())
	if err != nil {
		s.writeStoreError(rw, err, "Medication not found")
		return
	}

	s.writeResponse(rw, ResponsePayload{Message: "Medication updated successfully!"}, http.StatusOK)
}

func (s *Server) deleteMedication(rw http.ResponseWriter, r *http.Request) {
	err := s.medications.Delete(mux.Vars(r)["id"], currentUser(r).UserID)
	if err != nil {
		s.writeStoreError(rw, err, "Medication not found")
		return
	}

	s.writeResponse(rw, ResponsePayload{Message: "Medication deleted successfully!"}, http.StatusOK)
}
