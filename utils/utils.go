package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/agentdouble/kpix/engine"
	"github.com/agentdouble/kpix/models"
	"github.com/agentdouble/kpix/services"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var Validate *validator.Validate

func init() {
	Validate = validator.New(validator.WithRequiredStructEnabled())
	// Report JSON names so clients see the field they sent.
	Validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// DecodeAndValidate decodes the request body into a structure and validates it
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		HandleMessageResponse(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return err
	}
	if err := Validate.Struct(v); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			HandleMessageResponse(w, err.Error(), http.StatusBadRequest)
			return err
		}
		errorMessages := make(map[string]string, len(validationErrors))
		for _, e := range validationErrors {
			errorMessages[e.Field()] = e.Tag()
		}
		HandleValidationResponse(w, http.StatusBadRequest, errorMessages)
		return err
	}
	return nil
}

// PathObjectID reads an ObjectID path parameter, answering 400 when it is
// malformed.
func PathObjectID(w http.ResponseWriter, r *http.Request, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(r.PathValue(name))
	if err != nil {
		HandleMessageResponse(w, "invalid "+name+" format", http.StatusBadRequest)
		return primitive.NilObjectID, false
	}
	return id, true
}

// HandleError maps a service error to its HTTP status. Unknown errors are
// logged and hidden behind a 500.
func HandleError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var (
		validation *engine.ValidationError
		conflict   *engine.ConflictError
		notFound   *engine.NotFoundError
	)
	switch {
	case errors.As(err, &validation):
		HandleErrorResponse(w, validation, http.StatusBadRequest)
	case errors.As(err, &conflict):
		HandleMessageResponse(w, conflict.Message, http.StatusConflict)
	case errors.As(err, &notFound):
		HandleMessageResponse(w, notFound.Error(), http.StatusNotFound)
	case errors.Is(err, services.ErrUnauthorized):
		HandleMessageResponse(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, services.ErrForbidden):
		HandleMessageResponse(w, err.Error(), http.StatusForbidden)
	default:
		logger.Error("request_failed", zap.Error(err))
		HandleMessageResponse(w, "internal server error", http.StatusInternalServerError)
	}
}

// HandleMessageResponse writes a bare status message.
func HandleMessageResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	response := models.NewMessageResponse(statusCode, message)
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}

// HandleValidationResponse handles validation errors response for struct validation
func HandleValidationResponse(w http.ResponseWriter, statusCode int, validationErrors interface{}) {
	w.Header().Set("Content-Type", "application/json")
	response := models.NewValidationResponse(statusCode, validationErrors)
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}

// HandleErrorResponse reports a domain validation error with its field and details
func HandleErrorResponse(w http.ResponseWriter, verr *engine.ValidationError, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	response := models.NewErrorResponse(statusCode, verr.Message, verr.Field, verr.Details)
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}

// HandleDataResponse handles success responses with data
func HandleDataResponse(w http.ResponseWriter, message string, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	response := models.NewDataResponse(statusCode, message, data)
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}
