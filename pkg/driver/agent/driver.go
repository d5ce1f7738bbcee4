package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/fitlab-dev/fitrunner/pkg/core"
	"github.com/fitlab-dev/fitrunner/pkg/logger"
	"github.com/fitlab-dev/fitrunner/pkg/selector"
)

// DefaultFindTimeout is the default timeout for element operations.
const DefaultFindTimeout = 10 * time.Second

// pollInterval is the delay between find retries while waiting for an element.
const pollInterval = 200 * time.Millisecond

// Driver implements core.Driver using the on-device automation agent.
type Driver struct {
	client      *Client
	appID       string
	findTimeout time.Duration
}

// NewDriver opens an agent session and returns a driver.
func NewDriver(agentURL string, capabilities map[string]interface{}) (*Driver, error) {
	client := NewClient(agentURL)

	if err := client.Connect(capabilities); err != nil {
		return nil, err
	}

	d := &Driver{client: client}
	if appID, ok := capabilities["appId"].(string); ok {
		d.appID = appID
	}
	return d, nil
}

// Close disconnects from the agent.
func (d *Driver) Close() error {
	return d.client.Disconnect()
}

// SetFindTimeout overrides the default element find timeout.
func (d *Driver) SetFindTimeout(timeout time.Duration) {
	d.findTimeout = timeout
}

func (d *Driver) getFindTimeout() time.Duration {
	if d.findTimeout > 0 {
		return d.findTimeout
	}
	return DefaultFindTimeout
}

// LaunchApp implements core.Driver.
func (d *Driver) LaunchApp(ctx context.Context, appID string, clearState bool) error {
	logger.Info("launching app %s (clearState=%v)", appID, clearState)
	return d.client.LaunchApp(appID, clearState)
}

// StopApp implements core.Driver.
func (d *Driver) StopApp(ctx context.Context, appID string) error {
	return d.client.StopApp(appID)
}

// Find implements core.Driver. Polls until the element appears or the
// timeout expires.
func (d *Driver) Find(ctx context.Context, sel selector.Selector, timeout time.Duration) (*core.ElementInfo, error) {
	info, _, err := d.findElement(ctx, sel, timeout)
	return info, err
}

// findElement resolves a selector to element info plus the agent-side handle.
func (d *Driver) findElement(ctx context.Context, sel selector.Selector, timeout time.Duration) (*core.ElementInfo, string, error) {
	if timeout <= 0 {
		timeout = d.getFindTimeout()
	}
	deadline := time.Now().Add(timeout)

	for {
		info, id, err := d.findElementDirect(sel)
		if err == nil && info != nil {
			return info, id, nil
		}

		if time.Now().After(deadline) {
			return nil, "", core.ErrElementNotFound.WithDetails(map[string]interface{}{
				"selector": sel.Describe(),
				"timeout":  timeout.String(),
			})
		}

		select {
		case <-ctx.Done():
			return nil, "", ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// findElementDirect performs a single find attempt using the agent's
// native strategies.
func (d *Driver) findElementDirect(sel selector.Selector) (*core.ElementInfo, string, error) {
	strategy, value := strategyFor(sel)
	if strategy == "" {
		return nil, "", fmt.Errorf("empty selector")
	}

	if sel.Index > 0 {
		ids, err := d.client.FindElements(strategy, value)
		if err != nil {
			return nil, "", err
		}
		if sel.Index >= len(ids) {
			return nil, "", core.ErrElementNotFound
		}
		info, err := d.elementInfoFiltered(ids[sel.Index], sel)
		return info, ids[sel.Index], err
	}

	id, err := d.client.FindElement(strategy, value)
	if err != nil {
		return nil, "", err
	}
	info, err := d.elementInfoFiltered(id, sel)
	return info, id, err
}

// elementInfoFiltered fetches info and applies state filters.
func (d *Driver) elementInfoFiltered(id string, sel selector.Selector) (*core.ElementInfo, error) {
	info, err := d.client.ElementInfo(id)
	if err != nil {
		return nil, err
	}
	if sel.Enabled != nil && info.Enabled != *sel.Enabled {
		return nil, core.ErrElementNotFound.WithMessage("element state filter not satisfied: enabled")
	}
	if sel.Checked != nil && info.Checked != *sel.Checked {
		return nil, core.ErrElementNotFound.WithMessage("element state filter not satisfied: checked")
	}
	if sel.Focused != nil && info.Focused != *sel.Focused {
		return nil, core.ErrElementNotFound.WithMessage("element state filter not satisfied: focused")
	}
	if sel.Selected != nil && info.Selected != *sel.Selected {
		return nil, core.ErrElementNotFound.WithMessage("element state filter not satisfied: selected")
	}
	return info, nil
}

// strategyFor maps a selector onto the agent's find strategies.
func strategyFor(sel selector.Selector) (strategy, value string) {
	switch {
	case sel.ID != "":
		return "accessibility id", sel.ID
	case sel.Text != "":
		return "text", sel.Text
	default:
		return "", ""
	}
}

// Tap implements core.Driver.
func (d *Driver) Tap(ctx context.Context, sel selector.Selector) error {
	_, id, err := d.findElement(ctx, sel, 0)
	if err != nil {
		return err
	}
	return d.client.Click(id)
}

// LongPress implements core.Driver.
func (d *Driver) LongPress(ctx context.Context, sel selector.Selector, duration time.Duration) error {
	if duration <= 0 {
		duration = time.Second
	}
	_, id, err := d.findElement(ctx, sel, 0)
	if err != nil {
		return err
	}
	return d.client.LongClick(id, int(duration.Milliseconds()))
}

// Input implements core.Driver.
func (d *Driver) Input(ctx context.Context, sel selector.Selector, text string) error {
	_, id, err := d.findElement(ctx, sel, 0)
	if err != nil {
		return err
	}
	return d.client.SendKeys(id, text)
}

// Erase implements core.Driver.
func (d *Driver) Erase(ctx context.Context, sel selector.Selector) error {
	_, id, err := d.findElement(ctx, sel, 0)
	if err != nil {
		return err
	}
	return d.client.Clear(id)
}

// Swipe implements core.Driver. Swipes across the middle 60% of the screen.
func (d *Driver) Swipe(ctx context.Context, dir core.Direction) error {
	w, h := d.client.ScreenSize()
	if w == 0 || h == 0 {
		return fmt.Errorf("screen size unknown, cannot swipe")
	}

	var x1, y1, x2, y2 int
	switch dir {
	case core.DirectionUp:
		x1, y1, x2, y2 = w/2, h*8/10, w/2, h*2/10
	case core.DirectionDown:
		x1, y1, x2, y2 = w/2, h*2/10, w/2, h*8/10
	case core.DirectionLeft:
		x1, y1, x2, y2 = w*8/10, h/2, w*2/10, h/2
	case core.DirectionRight:
		x1, y1, x2, y2 = w*2/10, h/2, w*8/10, h/2
	default:
		return fmt.Errorf("unknown swipe direction: %s", dir)
	}
	return d.client.SwipePoints(x1, y1, x2, y2, 300)
}

// ScrollTo implements core.Driver. Swipes until the element is found or
// maxSwipes is exhausted.
func (d *Driver) ScrollTo(ctx context.Context, sel selector.Selector, dir core.Direction, maxSwipes int) (*core.ElementInfo, error) {
	if maxSwipes <= 0 {
		maxSwipes = 5
	}

	for i := 0; i <= maxSwipes; i++ {
		info, _, err := d.findElementDirect(sel)
		if err == nil && info != nil && info.Visible {
			return info, nil
		}
		if i == maxSwipes {
			break
		}
		if err := d.Swipe(ctx, dir); err != nil {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
	return nil, core.ErrElementNotFound.WithMessage(
		fmt.Sprintf("element %s not found after %d swipes", sel.Describe(), maxSwipes))
}

// Screenshot implements core.Driver.
func (d *Driver) Screenshot(ctx context.Context) ([]byte, error) {
	return d.client.Screenshot()
}

// Hierarchy implements core.Driver.
func (d *Driver) Hierarchy(ctx context.Context) ([]byte, error) {
	return d.client.Source()
}

// GetState implements core.Driver.
func (d *Driver) GetState(ctx context.Context) *core.StateSnapshot {
	state, _ := d.client.AppState(d.appID)
	return &core.StateSnapshot{
		AppState: state,
	}
}

// GetPlatformInfo implements core.Driver.
func (d *Driver) GetPlatformInfo() *core.PlatformInfo {
	w, h := d.client.ScreenSize()
	return &core.PlatformInfo{
		Platform:     d.client.Platform(),
		ScreenWidth:  w,
		ScreenHeight: h,
		AppID:        d.appID,
	}
}
