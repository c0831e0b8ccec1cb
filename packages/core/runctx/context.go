// Package runctx holds the state that flows between checks within a single
// orchestration run.
//
// A Context is created when a run starts and dropped when it completes. The
// identifiers produced by creation checks are typed optional fields; absent
// means the dependency is unmet and dependent checks must skip.
package runctx

import "fmt"

// Well-known keys accepted by Get and Set
const (
	KeyOrderID        = "createdOrderId"
	KeyReturnID       = "returnId"
	KeyTrackingNumber = "trackingNumber"
)

// Context is not safe for concurrent use; checks run strictly one at a time.
type Context struct {
	runID          string
	orderID        *string
	returnID       *string
	trackingNumber *string
	values         map[string]any
}

func New(runID string) *Context {
	return &Context{
		runID:  runID,
		values: make(map[string]any),
	}
}

// RunID identifies the run that owns this context
func (c *Context) RunID() string {
	return c.runID
}

// OrderID returns the order created earlier in the run
func (c *Context) OrderID() (string, bool) {
	return deref(c.orderID)
}

func (c *Context) SetOrderID(id string) {
	c.orderID = &id
}

// ReturnID returns the return request created earlier in the run
func (c *Context) ReturnID() (string, bool) {
	return deref(c.returnID)
}

func (c *Context) SetReturnID(id string) {
	c.returnID = &id
}

// TrackingNumber returns the tracking number attached to the order
func (c *Context) TrackingNumber() (string, bool) {
	return deref(c.trackingNumber)
}

func (c *Context) SetTrackingNumber(n string) {
	c.trackingNumber = &n
}

// Get returns the value stored under key. Well-known keys read the typed
// fields.
func (c *Context) Get(key string) (any, bool) {
	switch key {
	case KeyOrderID:
		return optional(c.OrderID())
	case KeyReturnID:
		return optional(c.ReturnID())
	case KeyTrackingNumber:
		return optional(c.TrackingNumber())
	}
	v, ok := c.values[key]
	return v, ok
}

// Set stores value under key. Well-known keys only accept strings.
func (c *Context) Set(key string, value any) error {
	switch key {
	case KeyOrderID, KeyReturnID, KeyTrackingNumber:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%s must be a string, got %T", key, value)
		}
		switch key {
		case KeyOrderID:
			c.SetOrderID(s)
		case KeyReturnID:
			c.SetReturnID(s)
		default:
			c.SetTrackingNumber(s)
		}
		return nil
	}
	c.values[key] = value
	return nil
}

func deref(p *string) (string, bool) {
	if p == nil {
		return "", false
	}
	return *p, true
}

func optional(s string, ok bool) (any, bool) {
	if !ok {
		return nil, false
	}
	return s, true
}
