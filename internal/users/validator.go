package users

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Field names accepted in a request body
const (
	FieldName = "name"
	FieldAge  = "age"
)

// Messages returned in the field-error mapping
const (
	MsgRequired       = "This field is required."
	MsgNull           = "This field may not be null."
	MsgBlank          = "This field may not be blank."
	MsgInvalidString  = "Not a valid string."
	MsgInvalidInteger = "A valid integer is required."
	MsgStringTooLarge = "String value too large."
)

// maxIntegerStringLength bounds numeric strings before they are parsed
const maxIntegerStringLength = 1000

// trailing ".0", ".000" and whitespace are allowed on integral strings
var integralSuffix = regexp.MustCompile(`\.0*\s*$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks a raw request body against the user schema. It returns the
// canonical input on success, or a *ValidationError listing every offending
// field. Fields other than name and age are ignored.
func Validate(raw map[string]any) (UserInput, error) {
	var input UserInput
	fields := FieldErrors{}

	if name, msg := coerceName(raw); msg != "" {
		fields.Add(FieldName, msg)
	} else {
		input.Name = name
	}

	if age, msg := coerceAge(raw); msg != "" {
		fields.Add(FieldAge, msg)
	} else {
		input.Age = age
	}

	// schema bounds only apply to fields that survived coercion
	if err := validate.Struct(input); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return UserInput{}, fmt.Errorf("validate user input: %w", err)
		}
		for _, fe := range verrs {
			if _, failed := fields[fe.Field()]; failed {
				continue
			}
			fields.Add(fe.Field(), ruleMessage(fe))
		}
	}

	if len(fields) > 0 {
		return UserInput{}, NewValidationError(fields)
	}
	return input, nil
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return MsgBlank
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	default:
		return fmt.Sprintf("Failed the %q rule.", fe.Tag())
	}
}

func coerceName(raw map[string]any) (string, string) {
	value, ok := raw[FieldName]
	if !ok {
		return "", MsgRequired
	}

	var s string
	switch v := value.(type) {
	case nil:
		return "", MsgNull
	case string:
		s = v
	case json.Number:
		s = v.String()
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		s = strconv.Itoa(v)
	case int64:
		s = strconv.FormatInt(v, 10)
	default:
		// bools, arrays and objects
		return "", MsgInvalidString
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return "", MsgBlank
	}
	return s, ""
}

func coerceAge(raw map[string]any) (int64, string) {
	value, ok := raw[FieldAge]
	if !ok {
		return 0, MsgRequired
	}

	switch v := value.(type) {
	case nil:
		return 0, MsgNull
	case int:
		return int64(v), ""
	case int64:
		return v, ""
	case float64:
		return integerFromFloat(v)
	case json.Number:
		return integerFromString(v.String())
	case string:
		return integerFromString(v)
	default:
		return 0, MsgInvalidInteger
	}
}

func integerFromFloat(f float64) (int64, string) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, MsgInvalidInteger
	}
	// out-of-range values are clamped so the range rule reports them
	if f >= math.MaxInt64 {
		return math.MaxInt64, ""
	}
	if f <= math.MinInt64 {
		return math.MinInt64, ""
	}
	return int64(f), ""
}

func integerFromString(s string) (int64, string) {
	if len(s) > maxIntegerStringLength {
		return 0, MsgStringTooLarge
	}

	s = strings.TrimSpace(integralSuffix.ReplaceAllString(s, ""))
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			if strings.HasPrefix(s, "-") {
				return math.MinInt64, ""
			}
			return math.MaxInt64, ""
		}
		return 0, MsgInvalidInteger
	}
	return n, ""
}
