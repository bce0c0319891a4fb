package server

import (
	"net/http"
	"strconv"

	"github.com/Daskott/vitals/server/models"
	"github.com/gorilla/mux"
)

type contactRequest struct {
	FirstName    string `json:"fname" validate:"required"`
	LastName     string `json:"lname"`
	PhoneNumber  string `json:"phoneNumber" validate:"required,phone_number"`
	Relationship string `json:"relationship"`
}

func (req contactRequest) fields() models.ContactFields {
	return models.ContactFields{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PhoneNumber:  req.PhoneNumber,
		Relationship: req.Relationship,
	}
}

func (s *Server) addEmergencyContact(rw http.ResponseWriter, r *http.Request) {
	data := contactRequest{}
	if !s.decodeAndValidate(rw, r, &data) {
		return
	}

	contact, err := s.contacts.Create(currentUser(r).UserID, data.fields())
	if err != nil {
		s.writeStoreError(rw, err, "User not found")
		return
	}

	s.writeResponse(rw, ResponsePayload{
		Message:   "Emergency contact added successfully!",
		ContactID: contact.ContactID,
	}, http.StatusOK)
}

func (s *Server) getEmergencyContacts(rw http.ResponseWriter, r *http.Request) {
	contacts, err := s.contacts.ListByOwner(currentUser(r).UserID)
	if err != nil {
		s.writeStoreError(rw, err, "User not found")
		return
	}

	s.writeJSON(rw, contacts, http.StatusOK)
}

func (s *Server) updateEmergencyContact(rw http.ResponseWriter, r *http.Request) {
	contactID, ok := s.contactIDFromPath(rw, r)
	if !ok {
		return
	}

	data := contactRequest{}
	if !s.decodeAndValidate(rw, r, &data) {
		return
	}

	_, err := s.contacts.Update(contactID, currentUser(r).UserID, data.fields())
	if err != nil {
		s.writeStoreError(rw, err, "Contact not found")
		return
	}

	s.writeResponse(rw, ResponsePayload{Message: "Contact updated successfully!"}, http.StatusOK)
}

func (s *Server) deleteEmergencyContact(rw http.ResponseWriter, r *http.Request) {
	contactID, ok := s.contactIDFromPath(rw, r)
	if !ok {
		return
	}

	err := s.contacts.Delete(contactID, currentUser(r).UserID)
	if err != nil {
		s.writeStoreError(rw, err, "Contact not found")
		return
	}

	s.writeResponse(rw, ResponsePayload{Message: "Contact deleted successfully!"}, http.StatusOK)
}

// contactIDFromPath parses the {id} path var. Ids that can't belong to any contact are not found.
func (s *Server) contactIDFromPath(rw http.ResponseWriter, r *http.Request) (uint, bool) {
	contactID, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		s.writeResponse(rw, ResponsePayload{Message: "Contact not found"}, http.StatusNotFound)
		return 0, false
	}

	return uint(contactID), true
}
