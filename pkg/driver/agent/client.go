// Package agent implements core.Driver against the on-device automation
// agent, a JSON-over-HTTP session API in the WebDriver shape.
package agent

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fitlab-dev/fitrunner/pkg/core"
	"github.com/fitlab-dev/fitrunner/pkg/logger"
)

// Client is a low-level HTTP client for the automation agent.
type Client struct {
	baseURL    string
	sessionID  string
	httpClient *http.Client
	platform   string
	screenW    int
	screenH    int
}

// NewClient creates a client for the agent at baseURL (e.g. http://127.0.0.1:6790).
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// response is the agent's standard envelope.
type response struct {
	SessionID string          `json:"sessionId,omitempty"`
	Value     json.RawMessage `json:"value,omitempty"`
	Error     string          `json:"error,omitempty"`
	Message   string          `json:"message,omitempty"`
}

// Connect opens a session with the given capabilities.
func (c *Client) Connect(capabilities map[string]interface{}) error {
	body := map[string]interface{}{"capabilities": capabilities}

	resp, err := c.post("/session", body)
	if err != nil {
		return core.ErrAgentUnreachable.WithCause(err)
	}

	if resp.SessionID == "" {
		// Some agent builds nest the session ID in the value payload.
		var value struct {
			SessionID string `json:"sessionId"`
		}
		if err := json.Unmarshal(resp.Value, &value); err == nil {
			resp.SessionID = value.SessionID
		}
	}
	if resp.SessionID == "" {
		return fmt.Errorf("agent did not return a session ID")
	}
	c.sessionID = resp.SessionID

	var caps struct {
		Platform     string `json:"platformName"`
		ScreenWidth  int    `json:"screenWidth"`
		ScreenHeight int    `json:"screenHeight"`
	}
	if err := json.Unmarshal(resp.Value, &caps); err == nil {
		c.platform = caps.Platform
		c.screenW = caps.ScreenWidth
		c.screenH = caps.ScreenHeight
	}

	logger.Info("agent session %s opened (%s)", c.sessionID, c.platform)
	return nil
}

// Disconnect closes the session.
func (c *Client) Disconnect() error {
	if c.sessionID == "" {
		return nil
	}
	_, err := c.delete(c.sessionPath(""))
	c.sessionID = ""
	return err
}

// Platform returns the platform reported at session start.
func (c *Client) Platform() string {
	return c.platform
}

// ScreenSize returns the screen dimensions reported at session start.
func (c *Client) ScreenSize() (int, int) {
	return c.screenW, c.screenH
}

func (c *Client) sessionPath(suffix string) string {
	return "/session/" + c.sessionID + suffix
}

// FindElement finds an element and returns its agent-side handle.
func (c *Client) FindElement(strategy, value string) (string, error) {
	resp, err := c.post(c.sessionPath("/element"), map[string]string{
		"using": strategy,
		"value": value,
	})
	if err != nil {
		return "", err
	}

	var elem struct {
		ElementID string `json:"ELEMENT"`
	}
	if err := json.Unmarshal(resp.Value, &elem); err != nil {
		return "", fmt.Errorf("failed to parse element response: %w", err)
	}
	if elem.ElementID == "" {
		return "", core.ErrElementNotFound
	}
	return elem.ElementID, nil
}

// FindElements finds all matching elements.
func (c *Client) FindElements(strategy, value string) ([]string, error) {
	resp, err := c.post(c.sessionPath("/elements"), map[string]string{
		"using": strategy,
		"value": value,
	})
	if err != nil {
		return nil, err
	}

	var elems []struct {
		ElementID string `json:"ELEMENT"`
	}
	if err := json.Unmarshal(resp.Value, &elems); err != nil {
		return nil, fmt.Errorf("failed to parse elements response: %w", err)
	}
	ids := make([]string, 0, len(elems))
	for _, e := range elems {
		ids = append(ids, e.ElementID)
	}
	return ids, nil
}

// ElementInfo fetches attributes and bounds for an element handle.
func (c *Client) ElementInfo(elementID string) (*core.ElementInfo, error) {
	resp, err := c.get(c.sessionPath("/element/" + elementID + "/info"))
	if err != nil {
		return nil, err
	}

	var raw struct {
		ID      string      `json:"resourceId"`
		Text    string      `json:"text"`
		Class   string      `json:"className"`
		Label   string      `json:"label"`
		Bounds  core.Bounds `json:"bounds"`
		Visible bool        `json:"visible"`
		Enabled bool        `json:"enabled"`
		Focused bool        `json:"focused"`
		Checked bool        `json:"checked"`
	}
	if err := json.Unmarshal(resp.Value, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse element info: %w", err)
	}

	return &core.ElementInfo{
		ID:                 raw.ID,
		Text:               raw.Text,
		Class:              raw.Class,
		AccessibilityLabel: raw.Label,
		Bounds:             raw.Bounds,
		Visible:            raw.Visible,
		Enabled:            raw.Enabled,
		Focused:            raw.Focused,
		Checked:            raw.Checked,
	}, nil
}

// Click taps an element by handle.
func (c *Client) Click(elementID string) error {
	_, err := c.post(c.sessionPath("/element/"+elementID+"/click"), nil)
	return err
}

// LongClick presses and holds an element by handle.
func (c *Client) LongClick(elementID string, durationMs int) error {
	_, err := c.post(c.sessionPath("/element/"+elementID+"/longclick"), map[string]int{
		"duration": durationMs,
	})
	return err
}

// SendKeys types text into an element by handle.
func (c *Client) SendKeys(elementID, text string) error {
	_, err := c.post(c.sessionPath("/element/"+elementID+"/value"), map[string]string{
		"text": text,
	})
	return err
}

// Clear erases text from an element by handle.
func (c *Client) Clear(elementID string) error {
	_, err := c.post(c.sessionPath("/element/"+elementID+"/clear"), nil)
	return err
}

// SwipePoints performs a swipe between two screen points.
func (c *Client) SwipePoints(x1, y1, x2, y2, durationMs int) error {
	_, err := c.post(c.sessionPath("/touch/swipe"), map[string]int{
		"fromX":    x1,
		"fromY":    y1,
		"toX":      x2,
		"toY":      y2,
		"duration": durationMs,
	})
	return err
}

// Screenshot captures the screen; the agent returns base64 PNG.
func (c *Client) Screenshot() ([]byte, error) {
	resp, err := c.get(c.sessionPath("/screenshot"))
	if err != nil {
		return nil, err
	}
	var b64 string
	if err := json.Unmarshal(resp.Value, &b64); err != nil {
		return nil, fmt.Errorf("failed to parse screenshot response: %w", err)
	}
	return base64.StdEncoding.DecodeString(b64)
}

// Source fetches the accessibility tree as JSON.
func (c *Client) Source() ([]byte, error) {
	resp, err := c.get(c.sessionPath("/source"))
	if err != nil {
		return nil, err
	}
	return resp.Value, nil
}

// LaunchApp starts the app.
func (c *Client) LaunchApp(appID string, clearState bool) error {
	_, err := c.post(c.sessionPath("/app/launch"), map[string]interface{}{
		"appId":      appID,
		"clearState": clearState,
	})
	return err
}

// StopApp terminates the app.
func (c *Client) StopApp(appID string) error {
	_, err := c.post(c.sessionPath("/app/stop"), map[string]string{
		"appId": appID,
	})
	return err
}

// AppState returns the app's lifecycle state (foreground, background, not_running).
func (c *Client) AppState(appID string) (string, error) {
	resp, err := c.get(c.sessionPath("/app/state?appId=" + appID))
	if err != nil {
		return "", err
	}
	var state string
	if err := json.Unmarshal(resp.Value, &state); err != nil {
		return "", err
	}
	return state, nil
}

// Health checks agent reachability without a session.
func (c *Client) Health() error {
	_, err := c.get("/status")
	return err
}

// HTTP plumbing

func (c *Client) post(path string, body interface{}) (*response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) get(path string) (*response, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) delete(path string) (*response, error) {
	req, err := http.NewRequest(http.MethodDelete, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) (*response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var parsed response
	if len(data) > 0 {
		if err := json.Unmarshal(data, &parsed); err != nil {
			return nil, fmt.Errorf("invalid agent response (%d): %s", resp.StatusCode, string(data))
		}
	}

	if resp.StatusCode >= 400 || parsed.Error != "" {
		msg := parsed.Message
		if msg == "" {
			msg = parsed.Error
		}
		if msg == "" {
			msg = fmt.Sprintf("agent returned status %d", resp.StatusCode)
		}
		return &parsed, fmt.Errorf("%s", msg)
	}
	return &parsed, nil
}
