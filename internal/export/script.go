package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gdg-garage/mosaic-visa/internal/application"
	"github.com/google/uuid"
)

const (
	// PassportSlots is the fixed number of passport entries the booking
	// script expects.
	PassportSlots = 5

	banner = "// ============================================\n"
)

// relationSlots follow the stored relation in the booking script's
// relation array, whatever the applicant count.
var relationSlots = []string{"Wife", "Father", "Mother", "Child"}

// Result is one generated export file.
type Result struct {
	Document Document
	Filename string
	Content  []byte
}

// Export builds the document, the file content and the filename for sub.
func Export(sub application.Submission) (Result, error) {
	doc := BuildDocument(sub)
	content, err := File(doc)
	if err != nil {
		return Result{}, err
	}
	return Result{Document: doc, Filename: Filename(doc), Content: content}, nil
}

// File renders the downloadable text: the script block, a blank line and
// the JSON document. The slot is redacted again so archived documents
// render the same bytes as the original download.
func File(doc Document) ([]byte, error) {
	doc = doc.Redacted()

	raw, err := MarshalDocument(doc)
	if err != nil {
		return nil, err
	}

	var b bytes.Buffer
	b.WriteString(ScriptBlock(doc))
	b.WriteString("\n")
	b.WriteString(banner)
	b.WriteString("// RAW JSON DATA (for reference)\n")
	b.WriteString(banner)
	b.Write(raw)
	b.WriteString("\n")
	return b.Bytes(), nil
}

// MarshalDocument encodes doc as JSON indented by two spaces, leaving
// non-ASCII and HTML characters as they are.
func MarshalDocument(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode export document: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// ScriptBlock renders the configuration pasted into the booking script.
// Passport numbers are stripped from the applicant list.
func ScriptBlock(doc Document) string {
	doc = doc.Redacted()
	info := doc.AdditionalInfo

	var b strings.Builder
	b.WriteString(banner)
	b.WriteString("// TAMPERMONKEY INTEGRATION CODE\n")
	b.WriteString(banner)

	b.WriteString("// 1. Replace the APPLICANT_DATA array:\n")
	writeConst(&b, "APPLICANT_DATA", applicantsValue(doc.ApplicantData, false))
	b.WriteString("\n")

	b.WriteString("// 2. Replace the COMMON_DATA object:\n")
	writeConst(&b, "COMMON_DATA", doc.CommonData.Value())
	b.WriteString("\n")

	b.WriteString("// 3. Replace the booking settings:\n")
	writeConst(&b, "START_DATE", Text(DisplayDate(info.StartDate)))
	writeConst(&b, "MAX_DATE", Text(DisplayDate(info.MaxDate)))
	writeConst(&b, "NUMBER_OF_APPLICANTS", Number(len(doc.ApplicantData)))
	writeConst(&b, "PASSPORT_NUMBERS", TextSeq(PassportNumbers(doc.ApplicantData)))
	writeConst(&b, "EMAIL", Text(info.Email))
	writeConst(&b, "PHONE", Text(info.Phone))
	writeConst(&b, "RELATIONS", TextSeq(Relations(info.Relation)))
	b.WriteString("\n")

	b.WriteString("// That's it! Your script is ready to auto-fill.\n")
	b.WriteString(banner)
	return b.String()
}

func writeConst(b *strings.Builder, name string, v Value) {
	b.WriteString("const ")
	b.WriteString(name)
	b.WriteString(" = ")
	b.WriteString(Render(v))
	b.WriteString(";\n")
}

// PassportNumbers returns exactly PassportSlots entries: the applicants'
// passport numbers in order, then "3emepersonne", "4emepersonne", ... for
// the missing travelers, numbered by their position plus one.
func PassportNumbers(applicants []application.Applicant) []string {
	out := make([]string, PassportSlots)
	for i := range out {
		if i < len(applicants) {
			out[i] = applicants[i].PassportNumber
			continue
		}
		out[i] = fmt.Sprintf("%demepersonne", i+2)
	}
	return out
}

// Relations returns the booking script relation array.
func Relations(relation string) []string {
	return append([]string{relation}, relationSlots...)
}

// DisplayDate converts YYYY-MM-DD to DD.MM.YYYY. Anything else is returned
// unchanged.
func DisplayDate(s string) string {
	t, err := time.Parse(application.DateLayout, s)
	if err != nil {
		return s
	}
	return t.Format("02.01.2006")
}

// Filename names the export after the first applicant and the contact
// phone, or with a random suffix when there is no applicant.
func Filename(doc Document) string {
	if len(doc.ApplicantData) == 0 {
		suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
		return "mosaic_visa_data_" + suffix + ".txt"
	}
	first := doc.ApplicantData[0]
	name := fmt.Sprintf("%s_%s_%s.txt", first.Name, first.Surname, doc.AdditionalInfo.Phone)
	return strings.ReplaceAll(name, " ", "_")
}
