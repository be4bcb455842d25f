// File: internal/validation/validator.go
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Errors maps a field's json name to the message shown next to it.
// A nil Errors means the record is valid.
type Errors map[string]string

// Fields returns the failing field names in a stable order.
func (e Errors) Fields() []string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Messages maps field → tag → human message.
type Messages map[string]map[string]string

var (
	engineOnce sync.Once
	engine     *validator.Validate
)

// Engine returns the shared validator. Field names are reported by their json tag.
func Engine() *validator.Validate {
	engineOnce.Do(func() {
		engine = validator.New(validator.WithRequiredStructEnabled())
		engine.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
	})
	return engine
}

// Schema validates one form type against its validate tags and message table.
type Schema[F any] struct {
	messages Messages
}

// NewSchema builds a schema for F. F must be a struct.
func NewSchema[F any](messages Messages) *Schema[F] {
	return &Schema[F]{messages: messages}
}

// Validate checks every field of values and returns one message per failing field,
// taken from the first rule that failed for it.
func (s *Schema[F]) Validate(values F) Errors {
	err := Engine().Struct(values)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		// InvalidValidationError: the schema itself is misused.
		return Errors{"_": err.Error()}
	}

	out := make(Errors, len(ve))
	for _, fe := range ve {
		field := fe.Field()
		if _, seen := out[field]; seen {
			continue
		}
		out[field] = s.message(fe)
	}
	return out
}

func (s *Schema[F]) message(fe validator.FieldError) string {
	if byTag, ok := s.messages[fe.Field()]; ok {
		if msg, ok := byTag[fe.Tag()]; ok {
			return msg
		}
	}
	return DefaultMessage(fe)
}

// DefaultMessage renders a generic message for a failed rule.
func DefaultMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", field)
	case "min":
		return fmt.Sprintf("The %s field must be at least %s characters long.", field, fe.Param())
	case "max":
		return fmt.Sprintf("The %s field may not be greater than %s characters.", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("The %s field must be one of the following values: %s.", field, fe.Param())
	case "e164":
		return fmt.Sprintf("The %s field must be a phone number in international format.", field)
	default:
		return fmt.Sprintf("Field validation for '%s' failed on the '%s' tag.", fe.Field(), fe.Tag())
	}
}
