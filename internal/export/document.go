// Package export turns a pending application into the downloadable file:
// a script configuration block for the booking automation followed by the
// structured JSON document.
package export

import (
	"github.com/gdg-garage/mosaic-visa/internal/application"
)

// CoreFields are the common fields copied into COMMON_DATA, in order.
var CoreFields = []string{
	"slot",
	"visa",
	"nationality",
	"contact_address",
	"contact_city",
	"contact_postcode",
	"departure_date",
	"return_date",
}

type CommonData struct {
	Slot            string `json:"slot"`
	Visa            string `json:"visa"`
	Nationality     string `json:"nationality"`
	ContactAddress  string `json:"contact_address"`
	ContactCity     string `json:"contact_city"`
	ContactPostcode string `json:"contact_postcode"`
	DepartureDate   string `json:"departure_date"`
	ReturnDate      string `json:"return_date"`
}

// AdditionalInfo holds every common field that is not a core field.
type AdditionalInfo struct {
	StartDate      string   `json:"start_date"`
	MaxDate        string   `json:"max_date"`
	Email          string   `json:"email"`
	Phone          string   `json:"phone"`
	Relation       string   `json:"relation"`
	Relations      []string `json:"relations"`
	Passports      []string `json:"passports"`
	AutoClickNext  bool     `json:"auto_click_next"`
	AutoClickDelay int      `json:"auto_click_delay"`
}

// Document is the structured export, also the archived form of a submission.
type Document struct {
	CommonData     CommonData              `json:"COMMON_DATA"`
	ApplicantData  []application.Applicant `json:"APPLICANT_DATA"`
	AdditionalInfo AdditionalInfo          `json:"ADDITIONAL_INFO"`
}

// BuildDocument partitions sub into the export document. The slot is
// always exported empty. sub is not modified.
func BuildDocument(sub application.Submission) Document {
	sub = sub.Clone()
	c := sub.Common

	doc := Document{
		CommonData: CommonData{
			Visa:            c.Visa,
			Nationality:     c.Nationality,
			ContactAddress:  c.ContactAddress,
			ContactCity:     c.ContactCity,
			ContactPostcode: c.ContactPostcode,
			DepartureDate:   c.DepartureDate,
			ReturnDate:      c.ReturnDate,
		},
		ApplicantData: sub.Applicants,
		AdditionalInfo: AdditionalInfo{
			StartDate:      c.StartDate,
			MaxDate:        c.MaxDate,
			Email:          c.Email,
			Phone:          c.Phone,
			Relation:       c.Relation,
			Relations:      c.Relations,
			Passports:      c.Passports,
			AutoClickNext:  c.AutoClickNext,
			AutoClickDelay: c.AutoClickDelay,
		},
	}
	return doc.Redacted()
}

// Redacted returns a copy of d with the slot cleared and nil lists replaced
// by empty ones.
func (d Document) Redacted() Document {
	out := d
	out.CommonData.Slot = ""
	out.ApplicantData = append([]application.Applicant{}, d.ApplicantData...)
	out.AdditionalInfo.Relations = append([]string{}, d.AdditionalInfo.Relations...)
	out.AdditionalInfo.Passports = append([]string{}, d.AdditionalInfo.Passports...)
	return out
}

func (c CommonData) Value() Value {
	return Map{
		{"slot", Text(c.Slot)},
		{"visa", Text(c.Visa)},
		{"nationality", Text(c.Nationality)},
		{"contact_address", Text(c.ContactAddress)},
		{"contact_city", Text(c.ContactCity)},
		{"contact_postcode", Text(c.ContactPostcode)},
		{"departure_date", Text(c.DepartureDate)},
		{"return_date", Text(c.ReturnDate)},
	}
}

// applicantValue renders one applicant; the passport number is left out
// unless withPassport is set.
func applicantValue(a application.Applicant, withPassport bool) Value {
	m := Map{
		{"name", Text(a.Name)},
		{"surname", Text(a.Surname)},
		{"gender", Text(a.Gender)},
		{"birthday", Text(a.Birthday)},
		{"birth_place", Text(a.BirthPlace)},
		{"marital_status", Text(a.MaritalStatus)},
		{"father_name", Text(a.FatherName)},
		{"mother_name", Text(a.MotherName)},
	}
	if withPassport {
		m = append(m, Entry{"passport_number", Text(a.PassportNumber)})
	}
	return append(m,
		Entry{"occupation", Text(a.Occupation)},
		Entry{"passport_issued_by", Text(a.PassportIssuedBy)},
		Entry{"passport_issue_date", Text(a.PassportIssueDate)},
		Entry{"passport_expiry", Text(a.PassportExpiry)},
		Entry{"travel_document", Text(a.TravelDocument)},
		Entry{"order", Number(a.Order)},
	)
}

func applicantsValue(applicants []application.Applicant, withPassport bool) Value {
	out := make(Seq, 0, len(applicants))
	for _, a := range applicants {
		out = append(out, applicantValue(a, withPassport))
	}
	return out
}
