package services

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	minPasswordLength = 8
	// bcrypt rejects longer input.
	maxPasswordBytes = 72
)

const passwordSpecials = `!@#$%^&*(),.?":{}|<>`

var (
	validate = newValidator()

	phoneSeparators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")
	phonePattern    = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return isPhone(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// isPhone accepts an optional leading + followed by 7 to 15 digits once
// spaces, dashes, dots and parentheses are removed.
func isPhone(s string) bool {
	return phonePattern.MatchString(phoneSeparators.Replace(strings.TrimSpace(s)))
}

func isEmail(s string) bool {
	return validate.Var(s, "required,email") == nil
}

// checkPassword applies the password rules in order and returns the first
// one that fails.
func checkPassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return Validation("Password must be at least %d characters", minPasswordLength)
	}
	if len(password) > maxPasswordBytes {
		return Validation("Password must be at most %d bytes", maxPasswordBytes)
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}

	switch {
	case !upper:
		return Validation("Password must include an uppercase letter")
	case !lower:
		return Validation("Password must include a lowercase letter")
	case !digit:
		return Validation("Password must include a number")
	case !special:
		return Validation("Password must include a special character")
	}
	return nil
}

// validateStruct runs the struct tags on v and turns the first violation
// into a ValidationError naming the field and the rule.
func validateStruct(kind string, v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return Validation("%s validation failed: %s", kind, describeFieldError(fe))
	}
	return Validation("%s validation failed: %v", kind, err)
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %v", field, fe.Param(), fe.Value())
	case "min":
		return fmt.Sprintf("%s must have at least %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "email":
		return fmt.Sprintf("%s is not a valid email", field)
	case "uri":
		return fmt.Sprintf("%s is not a valid URI", field)
	}
	return fmt.Sprintf("%s failed %s", field, fe.Tag())
}

// validateFields is validateStruct restricted to the named Go fields.
func validateFields(kind string, v any, fields ...string) error {
	err := validate.StructPartial(v, fields...)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return Validation("%s validation failed: %s", kind, describeFieldError(verrs[0]))
	}
	return Validation("%s validation failed: %v", kind, err)
}

// ParseID converts a caller supplied hex id, naming what it refers to when
// it is malformed.
func ParseID(raw, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
	if err != nil {
		return primitive.NilObjectID, Validation("invalid %s id %q", what, raw)
	}
	return id, nil
}
