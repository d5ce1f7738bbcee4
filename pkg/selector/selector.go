// Package selector describes element selection criteria for the FitTrack app.
package selector

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// Selector represents element selection criteria.
// Pure data structure - the driver decides how to resolve it.
type Selector struct {
	// Primary selectors
	Text string `yaml:"text"` // Visible text to match
	ID   string `yaml:"id"`   // Resource ID or accessibility ID

	// State filters
	Enabled  *bool `yaml:"enabled"`
	Selected *bool `yaml:"selected"`
	Checked  *bool `yaml:"checked"`
	Focused  *bool `yaml:"focused"`

	// Index for multiple matches (0-based)
	Index int `yaml:"index"`

	// Relative selectors
	ChildOf *Selector `yaml:"childOf"`
	Below   *Selector `yaml:"below"`
	Above   *Selector `yaml:"above"`
}

// selectorRaw is used for YAML parsing to capture the "label" shorthand.
type selectorRaw struct {
	Text     string    `yaml:"text"`
	Label    string    `yaml:"label"` // Shorthand for text
	ID       string    `yaml:"id"`
	Enabled  *bool     `yaml:"enabled"`
	Selected *bool     `yaml:"selected"`
	Checked  *bool     `yaml:"checked"`
	Focused  *bool     `yaml:"focused"`
	Index    int       `yaml:"index"`
	ChildOf  *Selector `yaml:"childOf"`
	Below    *Selector `yaml:"below"`
	Above    *Selector `yaml:"above"`
}

// UnmarshalYAML allows Selector to be unmarshaled from a plain string or a
// struct. A scalar starting with "#" selects by ID (the same notation
// Describe prints); any other scalar matches visible text.
func (s *Selector) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		if id, ok := strings.CutPrefix(node.Value, "#"); ok {
			s.ID = id
		} else {
			s.Text = node.Value
		}
		return nil
	}

	var raw selectorRaw
	if err := node.Decode(&raw); err != nil {
		return err
	}

	s.Text = raw.Text
	s.ID = raw.ID
	s.Enabled = raw.Enabled
	s.Selected = raw.Selected
	s.Checked = raw.Checked
	s.Focused = raw.Focused
	s.Index = raw.Index
	s.ChildOf = raw.ChildOf
	s.Below = raw.Below
	s.Above = raw.Above

	// "label" is a shorthand for "text"
	if raw.Label != "" && s.Text == "" {
		s.Text = raw.Label
	}

	return nil
}

// ByText returns a selector matching visible text.
func ByText(text string) Selector {
	return Selector{Text: text}
}

// ByID returns a selector matching a resource or accessibility ID.
func ByID(id string) Selector {
	return Selector{ID: id}
}

// At returns a copy of the selector targeting the nth match.
func (s Selector) At(index int) Selector {
	s.Index = index
	return s
}

// Inside returns a copy of the selector scoped to a parent.
func (s Selector) Inside(parent Selector) Selector {
	s.ChildOf = &parent
	return s
}

// IsEmpty returns true if no selector properties are set.
func (s *Selector) IsEmpty() bool {
	return s.Text == "" &&
		s.ID == "" &&
		s.ChildOf == nil &&
		s.Below == nil &&
		s.Above == nil
}

// HasRelativeSelector returns true if any relative anchor is set.
func (s *Selector) HasRelativeSelector() bool {
	return s.ChildOf != nil || s.Below != nil || s.Above != nil
}

// Describe returns a human-readable description.
func (s *Selector) Describe() string {
	switch {
	case s.Text != "":
		return s.Text
	case s.ID != "":
		return "#" + s.ID
	default:
		return "<empty>"
	}
}

// DescribeQuoted returns a quoted description like text="value" or id="value".
func (s *Selector) DescribeQuoted() string {
	switch {
	case s.Text != "":
		return "text=\"" + s.Text + "\""
	case s.ID != "":
		return "id=\"" + s.ID + "\""
	default:
		return ""
	}
}
