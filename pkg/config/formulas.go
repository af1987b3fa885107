package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/wildfunctions/formula/pkg/expr"
	"github.com/wildfunctions/formula/pkg/history"
)

// FormulaSet is a file of formulas plus the values to run them against:
//
//	values:
//	  baseRate: 4
//	  missing: null
//	frames:
//	  - {x: 1}
//	  - {x: 4}
//	formulas:
//	  - name: doubled
//	    id: 7
//	    text: |
//	      {rate:baseRate}
//	      [rate]*2
type FormulaSet struct {
	Values   map[string]*string   `yaml:"values"`
	Frames   []map[string]*string `yaml:"frames"`
	Formulas []FormulaEntry       `yaml:"formulas"`
}

// FormulaEntry is one named formula. ID scopes its alias block.
type FormulaEntry struct {
	Name string `yaml:"name"`
	ID   *int64 `yaml:"id,omitempty"`
	Text string `yaml:"text"`
}

// LoadFormulaSet reads and decodes a formula set file.
func LoadFormulaSet(path string) (*FormulaSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read formula set: %w", err)
	}
	set, err := ParseFormulaSet(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

// ParseFormulaSet decodes a formula set.
func ParseFormulaSet(data []byte) (*FormulaSet, error) {
	set := &FormulaSet{}
	if err := yaml.Unmarshal(data, set); err != nil {
		return nil, fmt.Errorf("decode formula set: %w", err)
	}
	for i, f := range set.Formulas {
		if f.Text == "" {
			return nil, fmt.Errorf("formula %d (%s): empty text", i, f.Name)
		}
		if f.Name == "" {
			set.Formulas[i].Name = fmt.Sprintf("formula_%d", i+1)
		}
	}
	return set, nil
}

// Texts returns the text of every formula.
func (s *FormulaSet) Texts() []string {
	out := make([]string, len(s.Formulas))
	for i, f := range s.Formulas {
		out[i] = f.Text
	}
	return out
}

// Resolver returns the values as a resolver. A null entry is a known key
// without value.
func (s *FormulaSet) Resolver() (expr.NullMapResolver, error) {
	return parseValues(s.Values)
}

// HistoryFrames returns the frames in order.
func (s *FormulaSet) HistoryFrames() ([]history.Frame, error) {
	out := make([]history.Frame, len(s.Frames))
	for i, f := range s.Frames {
		values, err := parseValues(f)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		out[i] = history.Frame(values)
	}
	return out, nil
}

func parseValues(in map[string]*string) (expr.NullMapResolver, error) {
	out := make(expr.NullMapResolver, len(in))
	for k, v := range in {
		if v == nil {
			out[k] = decimal.NullDecimal{}
			continue
		}
		d, err := decimal.NewFromString(*v)
		if err != nil {
			return nil, fmt.Errorf("value %s: %w", k, err)
		}
		out[k] = decimal.NewNullDecimal(d)
	}
	return out, nil
}
