package server

import (
	"fmt"
	"net/http"

	"github.com/Daskott/vitals/server/auth/key"
	"github.com/Daskott/vitals/server/models"
	"github.com/pkg/errors"
)

type signupRequest struct {
	FirstName   string `json:"fname" validate:"required"`
	LastName    string `json:"lname" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"passwordHash" validate:"required,password"`
	Gender      string `json:"gender"`
	PhoneNumber string `json:"phoneNumber" validate:"omitempty,phone_number"`
	DOB         string `json:"dob"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) createUser(rw http.ResponseWriter, r *http.Request) {
	data := signupRequest{}
	if !s.decodeAndValidate(rw, r, &data) {
		return
	}

	user := &models.User{
		FirstName:   data.FirstName,
		LastName:    data.LastName,
		Email:       data.Email,
		Gender:      data.Gender,
		PhoneNumber: data.PhoneNumber,
		DOB:         data.DOB,
	}

	err := s.users.Create(user, data.Password)
	if err != nil {
		s.writeStoreError(rw, err, "User not found")
		return
	}

	accessToken, err := s.sessions.Issue(user.Email)
	if err != nil {
		s.writeInternalError(rw, err)
		return
	}

	s.writeResponse(rw, ResponsePayload{Message: "User created successfully!", AccessToken: accessToken}, http.StatusOK)
}

func (s *Server) logIn(rw http.ResponseWriter, r *http.Request) {
	data := loginRequest{}
	if !s.decodeJSON(rw, r, &data) {
		return
	}

	passwordHash, err := s.users.PasswordHash(data.Email)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		s.writeInternalError(rw, err)
		return
	}

	// unknown email and wrong password get the same answer
	if err != nil || !s.hasher.Verify(data.Password, passwordHash) {
		s.writeResponse(rw, ResponsePayload{Message: "Invalid credentials!"}, http.StatusUnauthorized)
		return
	}

	accessToken, err := s.sessions.Issue(data.Email)
	if err != nil {
		s.writeInternalError(rw, err)
		return
	}

	s.writeResponse(rw, ResponsePayload{AccessToken: accessToken}, http.StatusOK)
}

func (s *Server) getUserDetails(rw http.ResponseWriter, r *http.Request) {
	s.writeJSON(rw, currentUser(r), http.StatusOK)
}

func (s *Server) updateUserDetails(rw http.ResponseWriter, r *http.Request) {
	data := make(map[string]interface{})
	if !s.decodeJSON(rw, r, &data) {
		return
	}

	_, err := s.users.UpdateFields(currentUser(r).Email, data)
	if err != nil {
		s.writeStoreError(rw, err, "User not found")
		return
	}

	s.writeResponse(rw, ResponsePayload{Message: "User details updated successfully!"}, http.StatusOK)
}

func (s *Server) welcome(rw http.ResponseWriter, r *http.Request) {
	s.writeResponse(rw, ResponsePayload{Message: fmt.Sprintf("Welcome, %v", currentUser(r).Email)}, http.StatusOK)
}

func (s *Server) health(rw http.ResponseWriter, r *http.Request) {
	s.writeResponse(rw, ResponsePayload{Message: "OK"}, http.StatusOK)
}

func (s *Server) jwks(rw http.ResponseWriter, r *http.Request) {
	keyPairJWK, err := s.keyPair.JWK()
	if err != nil {
		s.writeInternalError(rw, err)
		return
	}

	s.writeJSON(rw, key.ExportJWKAsJWKS(keyPairJWK), http.StatusOK)
}
