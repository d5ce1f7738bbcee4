// Package core defines the driver contract and shared result types for the
// fitrunner suite. Page objects talk to a Driver; the runner captures
// artifacts through it.
package core

import (
	"context"
	"time"

	"github.com/fitlab-dev/fitrunner/pkg/selector"
)

// Direction describes a swipe/scroll direction on screen.
type Direction string

// Direction values
const (
	DirectionUp    Direction = "up"
	DirectionDown  Direction = "down"
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
)

// Driver defines the interface for executing commands on a device.
// Implementations: the on-device agent client, mock.
// Page objects handle workflow logic; Driver just executes individual commands.
type Driver interface {
	// LaunchApp starts the app, optionally clearing its state first.
	LaunchApp(ctx context.Context, appID string, clearState bool) error

	// StopApp terminates the app.
	StopApp(ctx context.Context, appID string) error

	// Find locates an element, polling until the timeout expires.
	// A timeout of 0 uses the driver's default.
	Find(ctx context.Context, sel selector.Selector, timeout time.Duration) (*ElementInfo, error)

	// Tap taps the center of the matched element.
	Tap(ctx context.Context, sel selector.Selector) error

	// LongPress presses and holds the matched element.
	LongPress(ctx context.Context, sel selector.Selector, duration time.Duration) error

	// Input focuses the matched element and types text into it.
	Input(ctx context.Context, sel selector.Selector, text string) error

	// Erase clears text from the matched element.
	Erase(ctx context.Context, sel selector.Selector) error

	// Swipe performs a directional swipe across the screen.
	Swipe(ctx context.Context, dir Direction) error

	// ScrollTo swipes until the element is visible or maxSwipes is exhausted.
	ScrollTo(ctx context.Context, sel selector.Selector, dir Direction, maxSwipes int) (*ElementInfo, error)

	// Screenshot captures the current screen as PNG
	Screenshot(ctx context.Context) ([]byte, error)

	// Hierarchy captures the UI hierarchy as JSON
	Hierarchy(ctx context.Context) ([]byte, error)

	// GetState returns the current device/app state
	GetState(ctx context.Context) *StateSnapshot

	// GetPlatformInfo returns device/platform information
	GetPlatformInfo() *PlatformInfo
}

// ElementInfo represents information about a UI element
type ElementInfo struct {
	ID                 string            `json:"id,omitempty"`
	Text               string            `json:"text,omitempty"`
	Bounds             Bounds            `json:"bounds"`
	Visible            bool              `json:"visible"`
	Enabled            bool              `json:"enabled"`
	Focused            bool              `json:"focused,omitempty"`
	Checked            bool              `json:"checked,omitempty"`
	Selected           bool              `json:"selected,omitempty"`
	Class              string            `json:"class,omitempty"`
	AccessibilityLabel string            `json:"accessibilityLabel,omitempty"`
	Attributes         map[string]string `json:"attributes,omitempty"`
}

// Bounds represents element position and size
type Bounds struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Center returns the center point of the bounds
func (b Bounds) Center() (int, int) {
	return b.X + b.Width/2, b.Y + b.Height/2
}

// Contains checks if a point is within the bounds
func (b Bounds) Contains(x, y int) bool {
	return x >= b.X && x < b.X+b.Width && y >= b.Y && y < b.Y+b.Height
}

// StateSnapshot captures the current device/app state
type StateSnapshot struct {
	AppState        string       `json:"appState,omitempty"`       // foreground, background, not_running
	Orientation     string       `json:"orientation,omitempty"`    // portrait, landscape
	KeyboardVisible bool         `json:"keyboardVisible"`          // Is keyboard shown
	FocusedElement  *ElementInfo `json:"focusedElement,omitempty"` // Currently focused element
	CurrentScreen   string       `json:"currentScreen,omitempty"`  // Screen identifier
}

// PlatformInfo contains device and platform details
type PlatformInfo struct {
	Platform     string `json:"platform"`               // ios, android
	OSVersion    string `json:"osVersion"`              // e.g., "17.0", "14"
	DeviceName   string `json:"deviceName"`             // e.g., "iPhone 15 Pro", "Pixel 8"
	DeviceID     string `json:"deviceId"`               // Unique device identifier
	IsSimulator  bool   `json:"isSimulator"`            // Simulator/emulator vs real device
	ScreenWidth  int    `json:"screenWidth,omitempty"`  // Screen width in pixels
	ScreenHeight int    `json:"screenHeight,omitempty"` // Screen height in pixels
	AppID        string `json:"appId,omitempty"`        // Bundle ID / Package name
	AppVersion   string `json:"appVersion,omitempty"`   // App version
}
