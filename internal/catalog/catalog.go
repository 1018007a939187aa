// Package catalog holds the fixed code/label lists used to validate and
// label form input. A Catalog is built once at start and never mutated.
package catalog

import (
	"fmt"

	"github.com/spf13/viper"
)

type Kind string

const (
	Visa           Kind = "visa"
	Nationality    Kind = "nationality"
	Occupation     Kind = "occupation"
	MaritalStatus  Kind = "marital_status"
	Gender         Kind = "gender"
	TravelDocument Kind = "travel_document"
	Relation       Kind = "relation"
	Slot           Kind = "slot"
)

// Kinds lists every catalog kind in display order.
var Kinds = []Kind{Visa, Nationality, Occupation, MaritalStatus, Gender, TravelDocument, Relation, Slot}

type Choice struct {
	Code  string `json:"code" mapstructure:"code"`
	Label string `json:"label" mapstructure:"label"`
}

type Catalog struct {
	choices map[Kind][]Choice
	index   map[Kind]map[string]string
}

func newCatalog(choices map[Kind][]Choice) *Catalog {
	c := &Catalog{
		choices: make(map[Kind][]Choice, len(choices)),
		index:   make(map[Kind]map[string]string, len(choices)),
	}
	for kind, list := range choices {
		c.choices[kind] = append([]Choice(nil), list...)
		idx := make(map[string]string, len(list))
		for _, ch := range list {
			idx[ch.Code] = ch.Label
		}
		c.index[kind] = idx
	}
	return c
}

// Default returns the built-in catalog.
func Default() *Catalog {
	return newCatalog(defaultChoices())
}

// Load reads a YAML or JSON file whose top-level keys are catalog kinds,
// each a list of {code, label}. Kinds present in the file replace the
// defaults, the others are kept.
func Load(path string) (*Catalog, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}

	choices := defaultChoices()
	for _, kind := range Kinds {
		if !v.IsSet(string(kind)) {
			continue
		}
		var list []Choice
		if err := v.UnmarshalKey(string(kind), &list); err != nil {
			return nil, fmt.Errorf("decode catalog kind %s: %w", kind, err)
		}
		if len(list) == 0 {
			return nil, fmt.Errorf("catalog kind %s is empty", kind)
		}
		for _, ch := range list {
			if ch.Code == "" && kind != Slot {
				return nil, fmt.Errorf("catalog kind %s has an empty code", kind)
			}
		}
		choices[kind] = list
	}
	return newCatalog(choices), nil
}

func (c *Catalog) Has(kind Kind, code string) bool {
	_, ok := c.index[kind][code]
	return ok
}

// Label returns the display label of code, or code itself when unknown.
func (c *Catalog) Label(kind Kind, code string) string {
	if label, ok := c.index[kind][code]; ok {
		return label
	}
	return code
}

func (c *Catalog) Choices(kind Kind) []Choice {
	return append([]Choice(nil), c.choices[kind]...)
}

// All returns every kind with its choices.
func (c *Catalog) All() map[Kind][]Choice {
	out := make(map[Kind][]Choice, len(c.choices))
	for kind := range c.choices {
		out[kind] = c.Choices(kind)
	}
	return out
}
