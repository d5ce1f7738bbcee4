// Package mock provides an in-memory driver for running specs without a
// device. It models the app as a set of named screens; taps can transition
// between screens or mutate elements, which is enough for page objects to
// resolve their real locators.
package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/fitlab-dev/fitrunner/pkg/core"
	"github.com/fitlab-dev/fitrunner/pkg/selector"
)

// Element is one node on a mock screen.
type Element struct {
	ID      string
	Text    string
	Class   string
	Bounds  core.Bounds
	Enabled bool
	Checked bool

	// OnTap, if set, is invoked when the element is tapped. It runs with
	// the driver lock held; use the *Driver helpers that end in Locked.
	OnTap func(d *Driver)

	// OnLongPress, if set, is invoked on long-press. Falls back to OnTap.
	OnLongPress func(d *Driver)
}

// Screen is a named collection of elements.
type Screen struct {
	Name     string
	Elements []*Element
}

// Driver is a mock implementation of core.Driver backed by virtual screens.
type Driver struct {
	mu      sync.Mutex
	screens map[string]*Screen
	current string

	// FailOn injects an error for a command keyed by "command:describe",
	// e.g. "tap:Save Routine". Consumed on first hit.
	FailOn map[string]error

	// StepDelay adds artificial latency per command.
	StepDelay time.Duration

	calls []string
}

// New creates a mock driver with no screens. Register screens with AddScreen
// and pick the initial one with Show.
func New() *Driver {
	return &Driver{
		screens: make(map[string]*Screen),
		FailOn:  make(map[string]error),
	}
}

// AddScreen registers a screen.
func (d *Driver) AddScreen(s *Screen) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.screens[s.Name] = s
}

// Show makes the named screen current.
func (d *Driver) Show(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.current = name
}

// ShowLocked is Show for use inside OnTap callbacks.
func (d *Driver) ShowLocked(name string) {
	d.current = name
}

// ScreenLocked returns a registered screen for mutation inside OnTap callbacks.
func (d *Driver) ScreenLocked(name string) *Screen {
	return d.screens[name]
}

// CurrentScreen returns the name of the visible screen.
func (d *Driver) CurrentScreen() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

// Calls returns the recorded command log.
func (d *Driver) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.calls))
	copy(out, d.calls)
	return out
}

// AddElement appends an element to a registered screen.
func (s *Screen) AddElement(e *Element) {
	s.Elements = append(s.Elements, e)
}

// RemoveElement deletes the first element matching id or text.
func (s *Screen) RemoveElement(key string) {
	for i, e := range s.Elements {
		if e.ID == key || e.Text == key {
			s.Elements = append(s.Elements[:i], s.Elements[i+1:]...)
			return
		}
	}
}

// record logs a call and returns injected failure, if any. Caller holds mu.
func (d *Driver) record(command, detail string) error {
	key := command + ":" + detail
	d.calls = append(d.calls, key)
	if err, ok := d.FailOn[key]; ok {
		delete(d.FailOn, key)
		return err
	}
	return nil
}

// resolve finds elements matching sel on the current screen. Caller holds mu.
func (d *Driver) resolve(sel selector.Selector) []*Element {
	screen, ok := d.screens[d.current]
	if !ok {
		return nil
	}

	var matches []*Element
	for _, e := range screen.Elements {
		if sel.ID != "" && e.ID != sel.ID {
			continue
		}
		if sel.Text != "" && e.Text != sel.Text {
			continue
		}
		if sel.Enabled != nil && e.Enabled != *sel.Enabled {
			continue
		}
		if sel.Checked != nil && e.Checked != *sel.Checked {
			continue
		}
		matches = append(matches, e)
	}
	return matches
}

func (d *Driver) find(sel selector.Selector) (*Element, error) {
	matches := d.resolve(sel)
	if sel.Index >= len(matches) {
		return nil, core.ErrElementNotFound.WithDetails(map[string]interface{}{
			"selector": sel.Describe(),
			"screen":   d.current,
		})
	}
	return matches[sel.Index], nil
}

func info(e *Element) *core.ElementInfo {
	return &core.ElementInfo{
		ID:      e.ID,
		Text:    e.Text,
		Class:   e.Class,
		Bounds:  e.Bounds,
		Visible: true,
		Enabled: e.Enabled,
		Checked: e.Checked,
	}
}

func (d *Driver) sleep() {
	if d.StepDelay > 0 {
		time.Sleep(d.StepDelay)
	}
}

// LaunchApp implements core.Driver.
func (d *Driver) LaunchApp(ctx context.Context, appID string, clearState bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.record("launchApp", appID)
}

// StopApp implements core.Driver.
func (d *Driver) StopApp(ctx context.Context, appID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.record("stopApp", appID)
}

// Find implements core.Driver. The mock resolves immediately; the timeout
// only matters for real drivers.
func (d *Driver) Find(ctx context.Context, sel selector.Selector, timeout time.Duration) (*core.ElementInfo, error) {
	d.sleep()
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.record("find", sel.Describe()); err != nil {
		return nil, err
	}
	e, err := d.find(sel)
	if err != nil {
		return nil, err
	}
	return info(e), nil
}

// Tap implements core.Driver.
func (d *Driver) Tap(ctx context.Context, sel selector.Selector) error {
	d.sleep()
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.record("tap", sel.Describe()); err != nil {
		return err
	}
	e, err := d.find(sel)
	if err != nil {
		return err
	}
	if !e.Enabled {
		return core.ErrElementNotVisible.WithMessage(fmt.Sprintf("element %s is disabled", sel.Describe()))
	}
	if e.OnTap != nil {
		e.OnTap(d)
	}
	return nil
}

// LongPress implements core.Driver.
func (d *Driver) LongPress(ctx context.Context, sel selector.Selector, duration time.Duration) error {
	d.sleep()
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.record("longPress", sel.Describe()); err != nil {
		return err
	}
	e, err := d.find(sel)
	if err != nil {
		return err
	}
	if e.OnLongPress != nil {
		e.OnLongPress(d)
	} else if e.OnTap != nil {
		e.OnTap(d)
	}
	return nil
}

// Input implements core.Driver.
func (d *Driver) Input(ctx context.Context, sel selector.Selector, text string) error {
	d.sleep()
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.record("input", sel.Describe()+"="+text); err != nil {
		return err
	}
	e, err := d.find(sel)
	if err != nil {
		return err
	}
	e.Text += text
	return nil
}

// Erase implements core.Driver.
func (d *Driver) Erase(ctx context.Context, sel selector.Selector) error {
	d.sleep()
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.record("erase", sel.Describe()); err != nil {
		return err
	}
	e, err := d.find(sel)
	if err != nil {
		return err
	}
	e.Text = ""
	return nil
}

// Swipe implements core.Driver.
func (d *Driver) Swipe(ctx context.Context, dir core.Direction) error {
	d.sleep()
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.record("swipe", string(dir))
}

// ScrollTo implements core.Driver. Elements on the current screen are
// always reachable, so this is Find plus a recorded scroll.
func (d *Driver) ScrollTo(ctx context.Context, sel selector.Selector, dir core.Direction, maxSwipes int) (*core.ElementInfo, error) {
	d.sleep()
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.record("scrollTo", sel.Describe()); err != nil {
		return nil, err
	}
	e, err := d.find(sel)
	if err != nil {
		return nil, err
	}
	return info(e), nil
}

// Screenshot implements core.Driver. Returns a minimal valid PNG.
func (d *Driver) Screenshot(ctx context.Context) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.record("screenshot", d.current); err != nil {
		return nil, err
	}
	return []byte{
		0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
		0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52,
		0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
		0x08, 0x06, 0x00, 0x00, 0x00, 0x1F, 0x15, 0xC4,
		0x89, 0x00, 0x00, 0x00, 0x0A, 0x49, 0x44, 0x41,
		0x54, 0x78, 0x9C, 0x63, 0x00, 0x01, 0x00, 0x00,
		0x05, 0x00, 0x01, 0x0D, 0x0A, 0x2D, 0xB4, 0x00,
		0x00, 0x00, 0x00, 0x49, 0x45, 0x4E, 0x44, 0xAE,
		0x42, 0x60, 0x82,
	}, nil
}

// Hierarchy implements core.Driver. Serializes the current screen as JSON.
func (d *Driver) Hierarchy(ctx context.Context) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.record("hierarchy", d.current); err != nil {
		return nil, err
	}

	screen, ok := d.screens[d.current]
	if !ok {
		return []byte("{}"), nil
	}

	type node struct {
		ID     string      `json:"id,omitempty"`
		Text   string      `json:"text,omitempty"`
		Class  string      `json:"class,omitempty"`
		Bounds core.Bounds `json:"bounds"`
	}
	nodes := make([]node, 0, len(screen.Elements))
	for _, e := range screen.Elements {
		nodes = append(nodes, node{ID: e.ID, Text: e.Text, Class: e.Class, Bounds: e.Bounds})
	}
	return json.MarshalIndent(map[string]interface{}{
		"screen":   screen.Name,
		"elements": nodes,
	}, "", "  ")
}

// GetState implements core.Driver.
func (d *Driver) GetState(ctx context.Context) *core.StateSnapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return &core.StateSnapshot{
		AppState:      "foreground",
		Orientation:   "portrait",
		CurrentScreen: d.current,
	}
}

// GetPlatformInfo implements core.Driver.
func (d *Driver) GetPlatformInfo() *core.PlatformInfo {
	return &core.PlatformInfo{
		Platform:     "mock",
		DeviceID:     "mock-device",
		DeviceName:   "Mock Device",
		OSVersion:    "1.0",
		IsSimulator:  true,
		ScreenWidth:  1080,
		ScreenHeight: 2400,
	}
}
