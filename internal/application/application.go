// Package application defines the visa application records shared by the
// form validator, the session store and the export builder.
package application

import (
	"strings"
	"time"
)

const (
	// DateLayout is the only date representation kept once input is validated.
	DateLayout = "2006-01-02"

	MaxApplicants         = 5
	DefaultAutoClickDelay = 2000
	DefaultTravelDocument = "10"
)

// Common is the validated trip-level data shared by all applicants.
// Field order is the export order.
type Common struct {
	Slot            string   `json:"slot"`
	Visa            string   `json:"visa"`
	Nationality     string   `json:"nationality"`
	ContactAddress  string   `json:"contact_address"`
	ContactCity     string   `json:"contact_city"`
	ContactPostcode string   `json:"contact_postcode"`
	DepartureDate   string   `json:"departure_date"`
	ReturnDate      string   `json:"return_date"`
	StartDate       string   `json:"start_date"`
	MaxDate         string   `json:"max_date"`
	Email           string   `json:"email"`
	Phone           string   `json:"phone"`
	Relation        string   `json:"relation"`
	Relations       []string `json:"relations"`
	Passports       []string `json:"passports"`
	AutoClickNext   bool     `json:"auto_click_next"`
	AutoClickDelay  int      `json:"auto_click_delay"`
}

// Applicant is one validated traveler.
type Applicant struct {
	Name              string `json:"name"`
	Surname           string `json:"surname"`
	Gender            string `json:"gender"`
	Birthday          string `json:"birthday"`
	BirthPlace        string `json:"birth_place"`
	MaritalStatus     string `json:"marital_status"`
	FatherName        string `json:"father_name"`
	MotherName        string `json:"mother_name"`
	PassportNumber    string `json:"passport_number"`
	Occupation        string `json:"occupation"`
	PassportIssuedBy  string `json:"passport_issued_by"`
	PassportIssueDate string `json:"passport_issue_date"`
	PassportExpiry    string `json:"passport_expiry"`
	TravelDocument    string `json:"travel_document"`
	Order             int    `json:"order"`
}

// Submission is the normalized pair held in session state between the
// form step and the export step.
type Submission struct {
	Common     Common      `json:"common"`
	Applicants []Applicant `json:"applicants"`
}

// Clone returns a deep copy.
func (s Submission) Clone() Submission {
	out := s
	out.Common.Relations = cloneSlice(s.Common.Relations)
	out.Common.Passports = cloneSlice(s.Common.Passports)
	out.Applicants = cloneSlice(s.Applicants)
	return out
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}

// CommonForm is the common data exactly as submitted.
type CommonForm struct {
	Slot            string `json:"slot,omitempty" validate:"omitempty,catalog=slot"`
	Visa            string `json:"visa,omitempty" validate:"required,catalog=visa"`
	Nationality     string `json:"nationality,omitempty" validate:"required,catalog=nationality"`
	ContactAddress  string `json:"contact_address,omitempty" validate:"required"`
	ContactCity     string `json:"contact_city,omitempty" validate:"required,max=100"`
	ContactPostcode string `json:"contact_postcode,omitempty" validate:"required,max=10"`
	DepartureDate   string `json:"departure_date,omitempty" validate:"required,datetime=2006-01-02"`
	ReturnDate      string `json:"return_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	StartDate       string `json:"start_date,omitempty" validate:"required,datetime=2006-01-02"`
	MaxDate         string `json:"max_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Email           string `json:"email,omitempty" validate:"required,email"`
	Phone           string `json:"phone,omitempty" validate:"required,max=20"`
	Relation        string `json:"relation,omitempty" validate:"max=50"`
	Relations       string `json:"relations,omitempty" doc:"Comma separated relation labels"`
	Passports       string `json:"passports,omitempty" doc:"One passport number per line"`
	AutoClickNext   bool   `json:"auto_click_next,omitempty"`
	AutoClickDelay  *int   `json:"auto_click_delay,omitempty" validate:"omitempty,min=0,max=60000"`
}

// ApplicantForm is one applicant exactly as submitted.
type ApplicantForm struct {
	Name              string `json:"name,omitempty" validate:"required,max=100"`
	Surname           string `json:"surname,omitempty" validate:"required,max=100"`
	Gender            string `json:"gender,omitempty" validate:"required,catalog=gender"`
	Birthday          string `json:"birthday,omitempty" validate:"required,datetime=2006-01-02"`
	BirthPlace        string `json:"birth_place,omitempty" validate:"required,max=100"`
	MaritalStatus     string `json:"marital_status,omitempty" validate:"required,catalog=marital_status"`
	FatherName        string `json:"father_name,omitempty" validate:"required,max=200"`
	MotherName        string `json:"mother_name,omitempty" validate:"required,max=200"`
	PassportNumber    string `json:"passport_number,omitempty" validate:"required,max=20"`
	Occupation        string `json:"occupation,omitempty" validate:"required,catalog=occupation"`
	PassportIssuedBy  string `json:"passport_issued_by,omitempty" validate:"required,max=100"`
	PassportIssueDate string `json:"passport_issue_date,omitempty" validate:"required,datetime=2006-01-02"`
	PassportExpiry    string `json:"passport_expiry,omitempty" validate:"required,datetime=2006-01-02"`
	TravelDocument    string `json:"travel_document,omitempty" validate:"omitempty,catalog=travel_document"`
}

// DefaultCommon is the initial state of an empty form.
func DefaultCommon(now time.Time) Common {
	return Common{
		Visa:           "1",
		Nationality:    "31",
		DepartureDate:  now.AddDate(0, 0, 30).Format(DateLayout),
		ReturnDate:     now.AddDate(0, 0, 45).Format(DateLayout),
		Relations:      []string{},
		Passports:      []string{},
		AutoClickDelay: DefaultAutoClickDelay,
	}
}

// SplitList splits s on sep and keeps the trimmed, non-empty parts.
func SplitList(s, sep string) []string {
	out := []string{}
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
