package server

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/Daskott/vitals/server/auth"
	"github.com/Daskott/vitals/server/models"
	"github.com/Daskott/vitals/utils"
	"github.com/go-co-op/gocron"
	"github.com/go-playground/validator"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const maxRequestBodyBytes = 1 << 20

type ResponsePayload struct {
	Message      string `json:"message,omitempty"`
	AccessToken  string `json:"access_token,omitempty"`
	MedicationID string `json:"medicationID,omitempty"`
	ContactID    uint   `json:"contactID,omitempty"`
}

// ---------------------------------------------------------------------------------//
// Handler Helper functions
// --------------------------------------------------------------------------------//

func (s *Server) writeResponse(rw http.ResponseWriter, payLoad ResponsePayload, statusCode int) {
	if statusCode >= http.StatusInternalServerError {
		s.logg.Error(payLoad.Message)
	} else if statusCode >= http.StatusBadRequest {
		s.logg.Info(payLoad.Message)
	}

	s.writeJSON(rw, payLoad, statusCode)
}

func (s *Server) writeJSON(rw http.ResponseWriter, body interface{}, statusCode int) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(statusCode)

	if err := json.NewEncoder(rw).Encode(body); err != nil {
		s.logg.Errorf("writeJSON: %v", err)
	}
}

func (s *Server) writeInternalError(rw http.ResponseWriter, err error) {
	s.logg.Error(err)
	s.writeJSON(rw, ResponsePayload{Message: "Internal server error"}, http.StatusInternalServerError)
}

// writeStoreError maps store errors to a response. notFoundMsg is used for ErrNotFound.
func (s *Server) writeStoreError(rw http.ResponseWriter, err error, notFoundMsg string) {
	var inputErr *models.InputError

	switch {
	case errors.As(err, &inputErr):
		s.writeResponse(rw, ResponsePayload{Message: inputErr.Message}, http.StatusBadRequest)
	case errors.Is(err, models.ErrNotFound):
		s.writeResponse(rw, ResponsePayload{Message: notFoundMsg}, http.StatusNotFound)
	case errors.Is(err, models.ErrForbidden):
		s.writeResponse(rw, ResponsePayload{Message: "Action is forbidden"}, http.StatusForbidden)
	case errors.Is(err, models.ErrConflict):
		s.writeResponse(rw, ResponsePayload{Message: "User already exists!"}, http.StatusConflict)
	default:
		s.writeInternalError(rw, err)
	}
}

// decodeJSON decodes the request body into dest. It writes a 400 response
// and returns false if the body isn't valid JSON.
func (s *Server) decodeJSON(rw http.ResponseWriter, r *http.Request, dest interface{}) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(rw, r.Body, maxRequestBodyBytes))

	if err := decoder.Decode(dest); err != nil {
		s.writeResponse(rw, ResponsePayload{Message: "Invalid request body"}, http.StatusBadRequest)
		return false
	}

	return true
}

// decodeAndValidate is decodeJSON followed by struct validation of dest
func (s *Server) decodeAndValidate(rw http.ResponseWriter, r *http.Request, dest interface{}) bool {
	if !s.decodeJSON(rw, r, dest) {
		return false
	}

	if err := s.validate.Struct(dest); err != nil {
		s.writeResponse(rw, ResponsePayload{Message: validationMessage(err)}, http.StatusBadRequest)
		return false
	}

	return true
}

func validationMessage(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return "Invalid request body"
	}

	fields := []string{}
	for _, fieldErr := range validationErrs {
		if fieldErr.Tag() == "phone_number" {
			return models.ErrInvalidPhoneNumber.Message
		}
		fields = append(fields, fieldErr.Field())
	}

	return "Invalid or missing fields: " + strings.Join(fields, ", ")
}

func RegisterValidators(validate *validator.Validate) error {
	// report fields by their json names
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	err := validate.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		password := fl.Field().String()
		return len(password) > 0 && len(password) <= auth.MaxPasswordLength
	})
	if err != nil {
		return err
	}

	err = validate.RegisterValidation("phone_number", func(fl validator.FieldLevel) bool {
		return models.IsValidPhoneNumber(fl.Field().String())
	})
	if err != nil {
		return err
	}

	return nil
}

// ---------------------------------------------------------------------------------//
// Server Helper functions
// --------------------------------------------------------------------------------//

func serve(logg *zap.SugaredLogger, server *http.Server) {
	logg.Infof("Vitals server is listening on %v", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Fatal(err)
	}
}

func cleanup(logg *zap.SugaredLogger, scheduler *gocron.Scheduler, backup *dbBackup, server *http.Server) {
	scheduler.Stop()

	// Shutdown server gracefully
	ctxShutDown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctxShutDown); err != nil {
		logg.Errorf("Vitals server shutdown failed:%+s", err)
	}

	if backup != nil {
		backup.run()
	}

	logg.Infof("Vitals server stopped properly")
}

// configDirectory retrieves the directory to store vitals data
// Or logs an error message and then calls os.Exit if it's unable to.
func configDirectory(logg *zap.SugaredLogger, devMode bool) string {
	// Use 'vitals' folder in home directory for prod
	configFolderName := "vitals"
	rootDir, err := os.UserHomeDir()
	fatalOnError(logg, err)

	// Use 'dev' folder in current directory for dev mode
	if devMode {
		configFolderName = "dev"
		rootDir, err = os.Getwd()
		fatalOnError(logg, err)
	}

	configDir := filepath.Join(rootDir, configFolderName)

	err = utils.CreateDirIfNotExist(configDir)
	fatalOnError(logg, err)

	return configDir
}

func fatalOnError(logg *zap.SugaredLogger, err error) {
	if err != nil {
		logg.Fatal(err)
	}
}
