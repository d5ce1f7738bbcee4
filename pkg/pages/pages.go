// Package pages contains the page objects for the FitTrack app. Every
// action method queues a deferred step on the page's fluent chain and
// returns the page, so a whole journey is described first and executed
// once via Run. Query methods (counts, field text) hit the driver
// directly and never queue.
package pages

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fitlab-dev/fitrunner/pkg/core"
	"github.com/fitlab-dev/fitrunner/pkg/selector"
)

// Session binds a driver to the app's screens and carries per-build
// locator overrides loaded from a locators.yaml file.
type Session struct {
	Driver    core.Driver
	Overrides map[string]selector.Pack

	// FindTimeout applies to read-through queries. 0 uses the driver default.
	FindTimeout time.Duration
}

// NewSession creates a page-object session over a driver.
func NewSession(drv core.Driver) *Session {
	return &Session{Driver: drv}
}

// pack resolves the effective locator pack for a screen.
func (s *Session) pack(screen string, defaults selector.Pack) selector.Pack {
	if override, ok := s.Overrides[screen]; ok {
		return defaults.Merge(override)
	}
	return defaults
}

// base carries what every page needs: the driver and its locators.
type base struct {
	session *Session
	loc     selector.Pack
}

func (b *base) tap(ctx context.Context, sel selector.Selector) error {
	return b.session.Driver.Tap(ctx, sel)
}

func (b *base) tapKey(ctx context.Context, key string) error {
	return b.session.Driver.Tap(ctx, b.loc.Get(key))
}

func (b *base) input(ctx context.Context, key, text string) error {
	return b.session.Driver.Input(ctx, b.loc.Get(key), text)
}

func (b *base) erase(ctx context.Context, key string) error {
	return b.session.Driver.Erase(ctx, b.loc.Get(key))
}

func (b *base) find(ctx context.Context, sel selector.Selector) (*core.ElementInfo, error) {
	return b.session.Driver.Find(ctx, sel, b.session.FindTimeout)
}

// textOf reads an element's visible text.
func (b *base) textOf(ctx context.Context, sel selector.Selector) (string, error) {
	info, err := b.find(ctx, sel)
	if err != nil {
		return "", err
	}
	return info.Text, nil
}

// intOf reads an element's text as an integer, tolerating unit suffixes
// like "12 sets".
func (b *base) intOf(ctx context.Context, sel selector.Selector) (int, error) {
	text, err := b.textOf(ctx, sel)
	if err != nil {
		return 0, err
	}
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0, fmt.Errorf("element %s has no text", sel.Describe())
	}
	n, err := strconv.Atoi(strings.ReplaceAll(fields[0], ",", ""))
	if err != nil {
		return 0, fmt.Errorf("element %s text %q is not a number: %w", sel.Describe(), text, err)
	}
	return n, nil
}

// floatOf reads an element's text as a float, tolerating unit suffixes
// like "1250.5 kg".
func (b *base) floatOf(ctx context.Context, sel selector.Selector) (float64, error) {
	text, err := b.textOf(ctx, sel)
	if err != nil {
		return 0, err
	}
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0, fmt.Errorf("element %s has no text", sel.Describe())
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(fields[0], ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("element %s text %q is not a number: %w", sel.Describe(), text, err)
	}
	return f, nil
}

// assertVisible fails with a categorized error when the element is absent.
func (b *base) assertVisible(ctx context.Context, sel selector.Selector) error {
	info, err := b.find(ctx, sel)
	if err != nil {
		return err
	}
	if !info.Visible {
		return core.ErrElementNotVisible.WithDetails(map[string]interface{}{
			"selector": sel.Describe(),
		})
	}
	return nil
}
