package selector

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Pack is a named set of locators for one screen. Screens ship a built-in
// pack; a workspace can override individual entries per app build via a
// locators.yaml file.
type Pack map[string]Selector

// Get returns the locator for a key. Missing keys are a programming error
// in the page object, so this panics rather than returning a zero selector
// that would silently match nothing.
func (p Pack) Get(key string) Selector {
	sel, ok := p[key]
	if !ok {
		panic(fmt.Sprintf("locator %q is not defined", key))
	}
	return sel
}

// Merge returns a copy of the pack with entries from override applied on top.
func (p Pack) Merge(override Pack) Pack {
	merged := make(Pack, len(p)+len(override))
	for k, v := range p {
		merged[k] = v
	}
	for k, v := range override {
		merged[k] = v
	}
	return merged
}

// LoadOverrides reads per-screen locator overrides from a YAML file.
// The file maps screen name to a pack of locators; scalar values match
// visible text, or an ID when prefixed with "#":
//
//	routineEditor:
//	  saveButton: "#routine_save"
//	  discardButton: Discard
//	  routineName:
//	    id: routine_title_input
func LoadOverrides(path string) (map[string]Pack, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided locators file
	if err != nil {
		return nil, err
	}

	var overrides map[string]Pack
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse locator overrides: %w", err)
	}

	return overrides, nil
}
