package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/wanderlust-app/backend/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report field names as they appear on the wire.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Error carries every violated-field message from a single payload.
type Error struct {
	Messages []string
}

func (e *Error) Error() string {
	return strings.Join(e.Messages, ", ")
}

// ListingPayload is the wire shape for listing create/update requests.
// Price is a pointer so that a present zero value is distinguishable from
// a missing field. Category membership in the closed set is checked at
// the store layer, not here.
type ListingPayload struct {
	Title       string        `json:"title" validate:"required"`
	Description string        `json:"description"`
	Price       *float64      `json:"price" validate:"required,gte=0"`
	Location    string        `json:"location" validate:"required"`
	Country     string        `json:"country" validate:"required"`
	Category    string        `json:"category" validate:"required"`
	Image       *models.Image `json:"image"`
}

// ReviewPayload must carry a nested review object.
type ReviewPayload struct {
	Review *ReviewFields `json:"review" validate:"required"`
}

type ReviewFields struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"required"`
}

// ValidateListing checks a listing payload and returns an *Error carrying
// all field-level messages, or nil.
func ValidateListing(payload ListingPayload) error {
	return run(payload)
}

// ValidateReview checks a review payload the same way.
func ValidateReview(payload ReviewPayload) error {
	return run(payload)
}

func run(payload any) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := &Error{}
	for _, fe := range fieldErrs {
		out.Messages = append(out.Messages, messageFor(fe))
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "gte":
		return fmt.Sprintf("%s must be %s or greater", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
