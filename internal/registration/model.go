package registration

import (
	"strings"
	"time"
	"unicode"

	"github.com/Geniuskaa/quran_fest/internal/competition"
)

const (
	GENDER_MALE   = "male"
	GENDER_FEMALE = "female"

	DOB_LAYOUT = "2006-01-02"

	// Below this age a parent or guardian has to be named.
	ADULT_AGE = 18
)

// Form is one participant registration as typed by the user. Field names follow
// the intake script's column names.
type Form struct {
	FullName      string `json:"fullName" validate:"required,max=120"`
	DateOfBirth   string `json:"dateOfBirth"`
	Age           string `json:"age"` // legacy free text, only read when DateOfBirth is empty
	Gender        string `json:"gender" validate:"oneof=male female"`
	Category      string `json:"category" validate:"required,category"`
	ParentName    string `json:"parentName" validate:"max=120"`
	Phone         string `json:"phone" validate:"required,phone"`
	Email         string `json:"email" validate:"required,max=254,mail"`
	Address       string `json:"address" validate:"required,max=250"`
	TransactionID string `json:"transactionId" validate:"required,payref"`
	Notes         string `json:"notes" validate:"max=2000"`
	Token         string `json:"-" validate:"-"`
}

// NewForm is the initial state of an empty form.
func NewForm(category string) Form {
	f := Form{Gender: GENDER_MALE}
	if _, ok := competition.CategoryByID(category); ok {
		f.Category = category
	}
	return f
}

// Normalize trims every field and cleans the payment reference for the given mode.
func Normalize(f Form, strictRef bool) Form {
	f.FullName = strings.TrimSpace(f.FullName)
	f.DateOfBirth = strings.TrimSpace(f.DateOfBirth)
	f.Age = strings.TrimSpace(f.Age)
	f.Gender = strings.ToLower(strings.TrimSpace(f.Gender))
	f.Category = strings.TrimSpace(f.Category)
	f.ParentName = strings.TrimSpace(f.ParentName)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Email = strings.TrimSpace(f.Email)
	f.Address = strings.TrimSpace(f.Address)
	f.Notes = strings.TrimSpace(f.Notes)
	f.Token = strings.TrimSpace(f.Token)

	if f.Gender == "" {
		f.Gender = GENDER_MALE
	}

	ref := strings.ToUpper(strings.TrimSpace(f.TransactionID))
	if strictRef {
		ref = strings.Map(func(r rune) rune {
			if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
				return r
			}
			return -1
		}, ref)
	}
	f.TransactionID = ref

	return f
}

// PaymentFile is the optional payment screenshot, encoded as a data URL.
type PaymentFile struct {
	Base64 string `json:"base64"`
	Name   string `json:"name"`
	Type   string `json:"type"`
}

// Payload is the JSON document posted to the intake endpoint.
type Payload struct {
	Form
	CategoryTitle string       `json:"categoryTitle"`
	ComputedAge   *int         `json:"computedAge,omitempty"`
	PaymentFile   *PaymentFile `json:"paymentFile"`
	SubmissionID  string       `json:"submissionId"`
	SubmittedAt   time.Time    `json:"submittedAt"`
}

// Confirmation is what the participant sees once the intake accepted the form.
type Confirmation struct {
	SubmissionID  string
	FullName      string
	Category      string
	CategoryTitle string
	Email         string
}
