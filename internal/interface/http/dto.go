package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/badr-center/halaqa-tracker/internal/domain/attendance"
)

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST DTOs
// ══════════════════════════════════════════════════════════════════════════════

// StudentRequest is the body of POST /students and PUT /students/{id}.
type StudentRequest struct {
	Name string `json:"name" validate:"max=200"`
}

// SetFlagRequest is the body of PUT /days/{date}/students/{id}. Flag accepts
// the English or the Arabic flag name.
type SetFlagRequest struct {
	Flag  string `json:"flag" validate:"required,attendance_flag"`
	Value *bool  `json:"value" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("attendance_flag", func(fl validator.FieldLevel) bool {
		_, ok := attendance.ParseFlag(fl.Field().String())
		return ok
	})
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})
	return v
}

// decodeRequest reads a JSON body into dst and validates it.
func decodeRequest(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if err := validate.Struct(dst); err != nil {
		return describeValidation(err)
	}
	return nil
}

func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "attendance_flag":
			msgs = append(msgs, fmt.Sprintf("%s: unknown flag %q", fe.Field(), fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
