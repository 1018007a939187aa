package application

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/gdg-garage/mosaic-visa/internal/catalog"
	"github.com/go-playground/validator/v10"
)

// ValidationErrors maps a field name to its error messages. Applicant
// fields are keyed "applicants[i].field" with i the submitted position.
type ValidationErrors map[string][]string

func (e ValidationErrors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// Fields returns the failing field names, sorted.
func (e ValidationErrors) Fields() []string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

func (e ValidationErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, f := range e.Fields() {
		parts = append(parts, f+": "+strings.Join(e[f], " "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

type Validator struct {
	catalog  *catalog.Catalog
	validate *validator.Validate
	now      func() time.Time
}

// NewValidator returns a validator checking choices against cat. now is the
// clock used for "not in the past" rules; nil means time.Now.
func NewValidator(cat *catalog.Catalog, now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}

	v := &Validator{catalog: cat, validate: validator.New(), now: now}
	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.validate.RegisterValidation("catalog", v.inCatalog); err != nil {
		panic(fmt.Sprintf("register catalog validation: %v", err))
	}
	return v
}

func (v *Validator) inCatalog(fl validator.FieldLevel) bool {
	return v.catalog.Has(catalog.Kind(fl.Param()), fl.Field().String())
}

// Validate checks the common data and the applicants. It returns either the
// normalized submission or ValidationErrors, never both. Applicants with an
// empty name are dropped without error.
func (v *Validator) Validate(common CommonForm, applicants []ApplicantForm) (Submission, error) {
	errs := ValidationErrors{}

	common = trimCommon(common)
	v.collect(errs, "", v.validate.Struct(common))
	v.checkDates(errs, common)

	retained := make([]Applicant, 0, len(applicants))
	for i, form := range applicants {
		form = trimApplicant(form)
		if form.Name == "" {
			continue
		}
		v.collect(errs, fmt.Sprintf("applicants[%d].", i), v.validate.Struct(form))
		retained = append(retained, form.normalize(len(retained)))
	}
	if len(retained) > MaxApplicants {
		errs.Add("applicants", fmt.Sprintf("Please submit at most %d applicants.", MaxApplicants))
	}

	if len(errs) > 0 {
		return Submission{}, errs
	}

	return Submission{Common: common.normalize(), Applicants: retained}, nil
}

func (v *Validator) collect(errs ValidationErrors, prefix string, err error) {
	if err == nil {
		return
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		errs.Add(strings.TrimSuffix(prefix, ".")+"__all__", err.Error())
		return
	}
	for _, fe := range fieldErrs {
		errs.Add(prefix+fe.Field(), message(fe))
	}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "datetime":
		return "Enter a valid date (YYYY-MM-DD)."
	case "catalog":
		return fmt.Sprintf("Select a valid choice. %v is not one of the available choices.", fe.Value())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
		}
		return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
	}
	return "Enter a valid value."
}

func (v *Validator) today() time.Time {
	n := v.now()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

// checkDates applies the cross-field date rules to fields that passed the
// per-field checks.
func (v *Validator) checkDates(errs ValidationErrors, f CommonForm) {
	today := v.today()
	parse := func(field, value string) (time.Time, bool) {
		if value == "" || len(errs[field]) > 0 {
			return time.Time{}, false
		}
		t, err := time.Parse(DateLayout, value)
		return t, err == nil
	}

	start, hasStart := parse("start_date", f.StartDate)
	maxDate, hasMax := parse("max_date", f.MaxDate)
	departure, hasDeparture := parse("departure_date", f.DepartureDate)
	ret, hasReturn := parse("return_date", f.ReturnDate)

	if hasStart {
		if start.Before(today) {
			errs.Add("start_date", "Start date cannot be in the past.")
		}
		if hasMax && start.After(maxDate) {
			errs.Add("start_date", "Start date must be on or before the max date.")
		}
	}
	if hasMax && maxDate.Before(today) {
		errs.Add("max_date", "Max date cannot be in the past.")
	}
	if hasDeparture {
		if departure.Before(today) {
			errs.Add("departure_date", "Departure date cannot be in the past.")
		}
		if hasReturn && !departure.Before(ret) {
			errs.Add("departure_date", "Departure date must be before the return date.")
		}
	}
	if hasReturn && ret.Before(today) {
		errs.Add("return_date", "Return date cannot be in the past.")
	}
}

func trimCommon(f CommonForm) CommonForm {
	f.Slot = strings.TrimSpace(f.Slot)
	f.Visa = strings.TrimSpace(f.Visa)
	f.Nationality = strings.TrimSpace(f.Nationality)
	f.ContactAddress = strings.TrimSpace(f.ContactAddress)
	f.ContactCity = strings.TrimSpace(f.ContactCity)
	f.ContactPostcode = strings.TrimSpace(f.ContactPostcode)
	f.DepartureDate = strings.TrimSpace(f.DepartureDate)
	f.ReturnDate = strings.TrimSpace(f.ReturnDate)
	f.StartDate = strings.TrimSpace(f.StartDate)
	f.MaxDate = strings.TrimSpace(f.MaxDate)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Relation = strings.TrimSpace(f.Relation)
	return f
}

func trimApplicant(f ApplicantForm) ApplicantForm {
	f.Name = strings.TrimSpace(f.Name)
	f.Surname = strings.TrimSpace(f.Surname)
	f.Gender = strings.TrimSpace(f.Gender)
	f.Birthday = strings.TrimSpace(f.Birthday)
	f.BirthPlace = strings.TrimSpace(f.BirthPlace)
	f.MaritalStatus = strings.TrimSpace(f.MaritalStatus)
	f.FatherName = strings.TrimSpace(f.FatherName)
	f.MotherName = strings.TrimSpace(f.MotherName)
	f.PassportNumber = strings.TrimSpace(f.PassportNumber)
	f.Occupation = strings.TrimSpace(f.Occupation)
	f.PassportIssuedBy = strings.TrimSpace(f.PassportIssuedBy)
	f.PassportIssueDate = strings.TrimSpace(f.PassportIssueDate)
	f.PassportExpiry = strings.TrimSpace(f.PassportExpiry)
	f.TravelDocument = strings.TrimSpace(f.TravelDocument)
	return f
}

func (f CommonForm) normalize() Common {
	delay := DefaultAutoClickDelay
	if f.AutoClickDelay != nil {
		delay = *f.AutoClickDelay
	}
	return Common{
		Slot:            f.Slot,
		Visa:            f.Visa,
		Nationality:     f.Nationality,
		ContactAddress:  f.ContactAddress,
		ContactCity:     f.ContactCity,
		ContactPostcode: f.ContactPostcode,
		DepartureDate:   f.DepartureDate,
		ReturnDate:      f.ReturnDate,
		StartDate:       f.StartDate,
		MaxDate:         f.MaxDate,
		Email:           f.Email,
		Phone:           f.Phone,
		Relation:        f.Relation,
		Relations:       SplitList(f.Relations, ","),
		Passports:       SplitList(strings.ReplaceAll(f.Passports, "\r\n", "\n"), "\n"),
		AutoClickNext:   f.AutoClickNext,
		AutoClickDelay:  delay,
	}
}

func (f ApplicantForm) normalize(order int) Applicant {
	travelDocument := f.TravelDocument
	if travelDocument == "" {
		travelDocument = DefaultTravelDocument
	}
	return Applicant{
		Name:              f.Name,
		Surname:           f.Surname,
		Gender:            f.Gender,
		Birthday:          f.Birthday,
		BirthPlace:        f.BirthPlace,
		MaritalStatus:     f.MaritalStatus,
		FatherName:        f.FatherName,
		MotherName:        f.MotherName,
		PassportNumber:    f.PassportNumber,
		Occupation:        f.Occupation,
		PassportIssuedBy:  f.PassportIssuedBy,
		PassportIssueDate: f.PassportIssueDate,
		PassportExpiry:    f.PassportExpiry,
		TravelDocument:    travelDocument,
		Order:             order,
	}
}
