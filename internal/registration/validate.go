package registration

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/Geniuskaa/quran_fest/internal/competition"
	"github.com/go-playground/validator/v10"
)

const (
	FIELD_FULL_NAME      = "fullName"
	FIELD_DATE_OF_BIRTH  = "dateOfBirth"
	FIELD_GENDER         = "gender"
	FIELD_CATEGORY       = "category"
	FIELD_PARENT_NAME    = "parentName"
	FIELD_PHONE          = "phone"
	FIELD_EMAIL          = "email"
	FIELD_ADDRESS        = "address"
	FIELD_TRANSACTION_ID = "transactionId"
	FIELD_NOTES          = "notes"
	FIELD_PAYMENT_FILE   = "paymentFile"
)

var (
	phoneRe     = regexp.MustCompile(`^\+[0-9\s-]{10,20}$`)
	emailRe     = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	strictRefRe = regexp.MustCompile(`^[A-Z0-9]{17}$`)
	// Letter/digit groups joined by single separators, 6 to 40 characters overall.
	relaxedRefRe = regexp.MustCompile(`^[A-Za-z0-9]+([-/_][A-Za-z0-9]+)*$`)
)

var labels = map[string]string{
	FIELD_FULL_NAME:      "Full Name",
	FIELD_DATE_OF_BIRTH:  "Date of Birth",
	FIELD_GENDER:         "Gender",
	FIELD_CATEGORY:       "Category",
	FIELD_PARENT_NAME:    "Parent / Guardian Name",
	FIELD_PHONE:          "Phone Number",
	FIELD_EMAIL:          "Email Address",
	FIELD_ADDRESS:        "Address",
	FIELD_TRANSACTION_ID: "Payment Reference",
	FIELD_NOTES:          "Notes",
}

// Errors maps a form field to the message shown next to it.
type Errors map[string]string

func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

func (e Errors) Get(field string) string {
	return e[field]
}

func (e Errors) Merge(other Errors) Errors {
	if e == nil {
		e = Errors{}
	}
	for k, v := range other {
		if _, ok := e[k]; !ok {
			e[k] = v
		}
	}
	return e
}

type subject struct {
	Form
	now time.Time
}

// Validator checks a normalized Form. It is safe for concurrent use.
type Validator struct {
	v      *validator.Validate
	strict bool
}

func NewValidator(strictRef bool) (*Validator, error) {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	rules := map[string]validator.Func{
		"phone": func(fl validator.FieldLevel) bool {
			return phoneRe.MatchString(fl.Field().String())
		},
		"mail": func(fl validator.FieldLevel) bool {
			return emailRe.MatchString(fl.Field().String())
		},
		"category": func(fl validator.FieldLevel) bool {
			_, ok := competition.CategoryByID(fl.Field().String())
			return ok
		},
		"payref": func(fl validator.FieldLevel) bool {
			return ValidPaymentRef(fl.Field().String(), strictRef)
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return nil, err
		}
	}

	v.RegisterStructValidation(ageRules, subject{})

	return &Validator{v: v, strict: strictRef}, nil
}

func (v *Validator) Strict() bool {
	return v.strict
}

// ValidPaymentRef reports whether ref has the shape of a payment reference.
// Strict refs are 17 upper-case letters or digits (PayPal transaction ids).
func ValidPaymentRef(ref string, strict bool) bool {
	if strict {
		return strictRefRe.MatchString(ref)
	}
	return len(ref) >= 6 && len(ref) <= 40 && relaxedRefRe.MatchString(ref)
}

// ageRules needs the whole form: the guardian requirement depends on the age.
func ageRules(sl validator.StructLevel) {
	s := sl.Current().Interface().(subject)

	age, err := ResolveAge(s.Form, s.now)
	switch {
	case errors.Is(err, errNoAge):
		sl.ReportError(s.DateOfBirth, FIELD_DATE_OF_BIRTH, "DateOfBirth", "required", "")
	case errors.Is(err, errFutureDOB):
		sl.ReportError(s.DateOfBirth, FIELD_DATE_OF_BIRTH, "DateOfBirth", "future", "")
	case err != nil:
		sl.ReportError(s.DateOfBirth, FIELD_DATE_OF_BIRTH, "DateOfBirth", "date", "")
	}

	if (err != nil || age < ADULT_AGE) && s.ParentName == "" {
		sl.ReportError(s.ParentName, FIELD_PARENT_NAME, "ParentName", "guardian", "")
	}
}

// Validate returns an empty map when f can be submitted.
func (v *Validator) Validate(f Form, now time.Time) Errors {
	errs := Errors{}

	err := v.v.Struct(subject{Form: f, now: now})
	if err == nil {
		return errs
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs[FIELD_FULL_NAME] = err.Error()
		return errs
	}

	for _, fe := range verrs {
		if _, ok := errs[fe.Field()]; ok {
			continue
		}
		errs[fe.Field()] = v.message(fe.Field(), fe.Tag(), fe.Param())
	}
	return errs
}

func (v *Validator) message(field, tag, param string) string {
	label := labels[field]
	if label == "" {
		label = field
	}

	switch tag {
	case "required":
		if field == FIELD_DATE_OF_BIRTH {
			return "Please enter a date of birth."
		}
		return label + " is required."
	case "max":
		return label + " must be at most " + param + " characters."
	case "oneof":
		return "Please select a " + strings.ToLower(label) + "."
	case "category":
		return "Please select a valid category."
	case "phone":
		return "Phone number must start with + and contain 10-20 digits, spaces or dashes."
	case "mail":
		return "Please enter a valid email address."
	case "payref":
		if v.strict {
			return "PayPal Transaction ID must be exactly 17 letters or digits (e.g. 0FT064904K8018433)."
		}
		return "Payment reference must be 6-40 letters or digits, optionally separated by - / or _."
	case "future":
		return "Date of birth cannot be in the future."
	case "date":
		return "Please enter a valid date of birth."
	case "guardian":
		return "Parent / Guardian Name is required for participants under 18."
	}
	return label + " is invalid."
}
