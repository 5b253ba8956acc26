package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
)

var (
	ErrMalformed   = errors.New("malformed message")
	ErrUnknownType = errors.New("unknown message type")
)

// Type discriminates an envelope's payload
type Type string

// Messages posted by embedded window content
const (
	TypeClick     Type = "click"
	TypeDragStart Type = "dragStart"
	TypeDrag      Type = "drag"
	TypeDragEnd   Type = "dragEnd"
	TypeResize    Type = "resize"
)

// Messages produced by the host page itself
const (
	TypeViewport    Type = "viewport"
	TypeMount       Type = "mount"
	TypeUnmount     Type = "unmount"
	TypeHandleDown  Type = "handleDown"
	TypePointerMove Type = "pointerMove"
	TypePointerUp   Type = "pointerUp"
	TypeCanvasClick Type = "canvasClick"
	TypePing        Type = "ping"
)

// Messages sent back to subscribers
const (
	TypeState Type = "state"
	TypePong  Type = "pong"
	TypeError Type = "error"
)

var inbound = map[Type]struct{}{
	TypeClick:       {},
	TypeDragStart:   {},
	TypeDrag:        {},
	TypeDragEnd:     {},
	TypeResize:      {},
	TypeViewport:    {},
	TypeMount:       {},
	TypeUnmount:     {},
	TypeHandleDown:  {},
	TypePointerMove: {},
	TypePointerUp:   {},
	TypeCanvasClick: {},
	TypePing:        {},
}

// Known reports whether t is a message type the host accepts
func (t Type) Known() bool {
	_, ok := inbound[t]
	return ok
}

// Message is the transport-agnostic envelope exchanged with the host page
type Message struct {
	Type Type            `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// ClickData reports a click-type gesture inside a window
type ClickData struct {
	IframeID string `json:"iframeId"`
	ShiftKey bool   `json:"shiftKey"`
}

// DragData reports a drag gesture in the window's local coordinates
type DragData struct {
	IframeID string  `json:"iframeId"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	IsUsed   bool    `json:"isUsed"`
}

// DragEndData ends a drag reported by a window
type DragEndData struct {
	IframeID string `json:"iframeId"`
}

// ResizeData reports a window's new content size in pixels
type ResizeData struct {
	IframeID string  `json:"iframeId"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
}

// ViewportData is the canvas element's rectangle in viewport coordinates
type ViewportData struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// MountData announces a mounted window wrapper, optionally with its measured size
type MountData struct {
	IframeID string  `json:"iframeId"`
	Width    float64 `json:"width,omitempty"`
	Height   float64 `json:"height,omitempty"`
}

// UnmountData announces a removed window wrapper
type UnmountData struct {
	IframeID string `json:"iframeId"`
}

// PointerData is a host-native pointer event in viewport coordinates
type PointerData struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ErrorData is the payload of an error reply
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewError builds an error reply, classifying known protocol errors
func NewError(err error) Message {
	code := "internal"
	switch {
	case errors.Is(err, ErrMalformed):
		code = "malformed"
	case errors.Is(err, ErrUnknownType):
		code = "unknown_type"
	}
	return MustNew(TypeError, ErrorData{Code: code, Message: err.Error()})
}

// New builds an envelope around an encoded payload
func New(t Type, payload interface{}) (Message, error) {
	msg := Message{Type: t}
	if payload == nil {
		return msg, nil
	}
	data, err := sonic.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("encode %s payload: %w", t, err)
	}
	msg.Data = data
	return msg, nil
}

// MustNew is New for payloads known to encode
func MustNew(t Type, payload interface{}) Message {
	msg, err := New(t, payload)
	if err != nil {
		panic(err)
	}
	return msg
}

// Decode parses a raw frame into an envelope of a known inbound type
func Decode(raw []byte) (Message, error) {
	var msg Message
	if err := sonic.Unmarshal(raw, &msg); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if msg.Type == "" {
		return Message{}, fmt.Errorf("%w: missing type", ErrMalformed)
	}
	if !msg.Type.Known() {
		return msg, fmt.Errorf("%w: %q", ErrUnknownType, msg.Type)
	}
	return msg, nil
}

// Payload decodes the envelope's data into v
func (m Message) Payload(v interface{}) error {
	if len(m.Data) == 0 {
		return fmt.Errorf("%w: %s has no data", ErrMalformed, m.Type)
	}
	if err := sonic.Unmarshal(m.Data, v); err != nil {
		return fmt.Errorf("%w: %s data: %v", ErrMalformed, m.Type, err)
	}
	return nil
}

// Encode serializes any outbound value
func Encode(v interface{}) ([]byte, error) {
	return sonic.Marshal(v)
}

// Unmarshal decodes any frame without checking its type, for readers of
// outbound envelopes
func Unmarshal(data []byte, v interface{}) error {
	return sonic.Unmarshal(data, v)
}
