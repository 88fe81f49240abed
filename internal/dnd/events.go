package dnd

import (
	"encoding/json"
	"fmt"
	"strings"

	"formbuilder/internal/model"
)

// Point is a pointer delta in pixels, relative to where the gesture started.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Event is one step of a drag gesture. The set of implementations is closed.
type Event interface {
	kind() string
}

type DragStart struct {
	ActiveID  string          `json:"active"`
	Container model.Container `json:"container,omitempty"`
}

type DragMove struct {
	Delta Point `json:"delta"`
}

// DragOver reports the item under the pointer. An empty OverID means nothing.
type DragOver struct {
	ActiveID        string          `json:"active,omitempty"`
	OverID          string          `json:"over,omitempty"`
	ActiveContainer model.Container `json:"activeContainer,omitempty"`
	OverContainer   model.Container `json:"overContainer,omitempty"`
}

type DragEnd struct {
	ActiveID string `json:"active,omitempty"`
	OverID   string `json:"over,omitempty"`
}

type DragCancel struct{}

func (DragStart) kind() string  { return "start" }
func (DragMove) kind() string   { return "move" }
func (DragOver) kind() string   { return "over" }
func (DragEnd) kind() string    { return "end" }
func (DragCancel) kind() string { return "cancel" }

// Kind returns the wire tag of an event ("start", "move", ...).
func Kind(ev Event) string {
	if ev == nil {
		return ""
	}
	return ev.kind()
}

type UnknownEventError struct {
	Type string
}

func (e *UnknownEventError) Error() string {
	return fmt.Sprintf("unknown gesture event type: %q", e.Type)
}

// DecodeEvent parses the JSON wire form used by gesture scripts:
//
//	{"type":"start","active":"blk-1","container":"tree"}
//	{"type":"move","delta":{"x":50,"y":0}}
//	{"type":"over","active":"blk-1","over":"blk-2"}
//	{"type":"end","active":"blk-1","over":"blk-2"}
//	{"type":"cancel"}
func DecodeEvent(b []byte) (Event, error) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(b, &env); err != nil {
		return nil, fmt.Errorf("decode gesture event: %w", err)
	}
	var (
		ev  Event
		err error
	)
	switch strings.ToLower(strings.TrimSpace(env.Type)) {
	case "start":
		var e DragStart
		err = json.Unmarshal(b, &e)
		ev = e
	case "move":
		var e DragMove
		err = json.Unmarshal(b, &e)
		ev = e
	case "over":
		var e DragOver
		err = json.Unmarshal(b, &e)
		ev = e
	case "end":
		var e DragEnd
		err = json.Unmarshal(b, &e)
		ev = e
	case "cancel":
		ev = DragCancel{}
	default:
		return nil, &UnknownEventError{Type: env.Type}
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s event: %w", env.Type, err)
	}
	return ev, nil
}

// EncodeEvent is the inverse of DecodeEvent.
func EncodeEvent(ev Event) ([]byte, error) {
	if ev == nil {
		return nil, &UnknownEventError{}
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	if m == nil {
		m = map[string]any{}
	}
	m["type"] = ev.kind()
	return json.Marshal(m)
}
