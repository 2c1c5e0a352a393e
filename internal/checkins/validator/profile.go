package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"hotelops/pkg/dates"
	"hotelops/pkg/logger"
	"hotelops/pkg/model"

	"github.com/go-playground/validator/v10"
)

const MinimumAge = 18

var documentNumberRegex = regexp.MustCompile(`^[A-Z0-9]{5,20}$`)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

func (v ValidationErrors) Fields() map[string]string {
	fields := make(map[string]string, len(v))
	for _, err := range v {
		if _, seen := fields[err.Field]; !seen {
			fields[err.Field] = err.Message
		}
	}
	return fields
}

// CheckInValidator checks the identity data a guest hands over at check-in.
type CheckInValidator struct {
	validate        *validator.Validate
	logger          *logger.Logger
	location        *time.Location
	maxDocumentSize int
	now             func() time.Time
}

func NewCheckInValidator(log *logger.Logger, location *time.Location, maxDocumentSize int) *CheckInValidator {
	v := &CheckInValidator{
		validate:        validator.New(),
		logger:          log,
		location:        location,
		maxDocumentSize: maxDocumentSize,
		now:             time.Now,
	}

	v.validate.RegisterTagNameFunc(jsonFieldName)

	if err := v.validate.RegisterValidation("adult", v.validateAdult); err != nil {
		log.Fatal("Failed to register adult validation", "error", err)
	}
	if err := v.validate.RegisterValidation("document_number", validateDocumentNumber); err != nil {
		log.Fatal("Failed to register document_number validation", "error", err)
	}

	log.Info("Check-in validator initialized successfully")
	return v
}

func (v *CheckInValidator) ValidateCheckIn(req *model.CheckInRequest) error {
	var validationErrors ValidationErrors

	if req.BookingID == "" {
		validationErrors = append(validationErrors, ValidationError{Field: "booking_id", Message: "booking_id is required"})
	}
	if err := v.validate.Var(req.GuestEmail, "required,email"); err != nil {
		validationErrors = append(validationErrors, ValidationError{Field: "guest_email", Message: "guest_email must be a valid email address"})
	}

	if err := v.validate.Struct(&req.Profile); err != nil {
		var validationErrs validator.ValidationErrors
		if !errors.As(err, &validationErrs) {
			return err
		}
		validationErrors = append(validationErrors, translateValidationErrors(validationErrs)...)
	}

	switch {
	case len(req.Document) == 0:
		validationErrors = append(validationErrors, ValidationError{Field: "document", Message: "document is required"})
	case len(req.Document) > v.maxDocumentSize:
		validationErrors = append(validationErrors, ValidationError{
			Field:   "document",
			Message: fmt.Sprintf("document must not exceed %d bytes", v.maxDocumentSize),
		})
	}

	if len(validationErrors) > 0 {
		return validationErrors
	}
	return nil
}

// ValidateEmail checks a single address, used for invitations.
func (v *CheckInValidator) ValidateEmail(field, email string) error {
	if err := v.validate.Var(email, "required,email"); err != nil {
		return ValidationErrors{{Field: field, Message: fmt.Sprintf("%s must be a valid email address", field)}}
	}
	return nil
}

func (v *CheckInValidator) validateAdult(fl validator.FieldLevel) bool {
	birth, err := dates.Parse(fl.Field().String())
	if err != nil {
		// datetime reports the format problem
		return true
	}
	return dates.YearsBetween(birth, dates.Day(v.now(), v.location)) >= MinimumAge
}

func validateDocumentNumber(fl validator.FieldLevel) bool {
	return documentNumberRegex.MatchString(fl.Field().String())
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}

func translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s characters", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		case "datetime":
			message = fmt.Sprintf("%s must be a date in YYYY-MM-DD format", err.Field())
		case "adult":
			message = fmt.Sprintf("guest must be at least %d years old", MinimumAge)
		case "iso3166_1_alpha2":
			message = fmt.Sprintf("%s must be an ISO 3166-1 alpha-2 country code", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "document_number":
			message = fmt.Sprintf("%s must be 5-20 uppercase letters or digits", err.Field())
		case "e164":
			message = fmt.Sprintf("%s must be in E.164 format (e.g., +14155552671)", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
