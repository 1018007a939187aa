package export

import (
	"strconv"
	"strings"
)

// Value is a JavaScript literal value. The set of implementations is closed:
// Map, Seq, Text, Number, Bool and Null.
type Value interface {
	jsValue()
}

// Entry is one key of a Map.
type Entry struct {
	Key   string
	Value Value
}

// Map renders as an object literal with unquoted keys, in entry order.
type Map []Entry

type Seq []Value

type Text string

type Number float64

type Bool bool

type Null struct{}

func (Map) jsValue()    {}
func (Seq) jsValue()    {}
func (Text) jsValue()   {}
func (Number) jsValue() {}
func (Bool) jsValue()   {}
func (Null) jsValue()   {}

// TextSeq converts a list of strings.
func TextSeq(values []string) Seq {
	out := make(Seq, 0, len(values))
	for _, v := range values {
		out = append(out, Text(v))
	}
	return out
}

// Render writes v as a JavaScript literal indented with two spaces per level.
func Render(v Value) string {
	var b strings.Builder
	render(&b, v, 0)
	return b.String()
}

func render(b *strings.Builder, v Value, depth int) {
	switch v := v.(type) {
	case Map:
		if len(v) == 0 {
			b.WriteString("{}")
			return
		}
		b.WriteString("{\n")
		for i, e := range v {
			if i > 0 {
				b.WriteString(",\n")
			}
			indent(b, depth+1)
			b.WriteString(e.Key)
			b.WriteString(": ")
			render(b, e.Value, depth+1)
		}
		b.WriteString("\n")
		indent(b, depth)
		b.WriteString("}")
	case Seq:
		if len(v) == 0 {
			b.WriteString("[]")
			return
		}
		b.WriteString("[\n")
		for i, item := range v {
			if i > 0 {
				b.WriteString(",\n")
			}
			indent(b, depth+1)
			render(b, item, depth+1)
		}
		b.WriteString("\n")
		indent(b, depth)
		b.WriteString("]")
	case Text:
		b.WriteString(quote(string(v)))
	case Number:
		b.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 64))
	case Bool:
		b.WriteString(strconv.FormatBool(bool(v)))
	default:
		// Null and a nil Value.
		b.WriteString("null")
	}
}

func indent(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
}

var quoteReplacer = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

func quote(s string) string {
	return `"` + quoteReplacer.Replace(s) + `"`
}
