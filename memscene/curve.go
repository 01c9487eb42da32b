package memscene

import (
	"sort"

	"github.com/tanema/gween/ease"
)

// Interpolation selects how a curve moves from a key to the next one.
type Interpolation uint8

const (
	InterpolationLinear Interpolation = iota
	InterpolationConstant
	InterpolationEaseIn
	InterpolationEaseOut
	InterpolationEaseInOut
)

// ParseInterpolation maps a name to an Interpolation. Unknown names map
// to linear.
func ParseInterpolation(s string) Interpolation {
	switch s {
	case "constant":
		return InterpolationConstant
	case "easeIn":
		return InterpolationEaseIn
	case "easeOut":
		return InterpolationEaseOut
	case "easeInOut":
		return InterpolationEaseInOut
	default:
		return InterpolationLinear
	}
}

func (i Interpolation) tweenFunc() ease.TweenFunc {
	switch i {
	case InterpolationEaseIn:
		return ease.InQuad
	case InterpolationEaseOut:
		return ease.OutQuad
	case InterpolationEaseInOut:
		return ease.InOutCubic
	default:
		return ease.Linear
	}
}

// Key is a value at a time. Interpolation applies to the span after it.
type Key struct {
	Time          float64
	Value         float64
	Interpolation Interpolation
}

// Curve is an animation curve: keys sorted by time.
type Curve struct {
	keys []Key
}

// NewCurve returns a curve with the given keys.
func NewCurve(keys ...Key) *Curve {
	c := &Curve{}
	for _, k := range keys {
		c.AddKey(k)
	}
	return c
}

// Keys returns a copy of the keys in time order.
func (c *Curve) Keys() []Key {
	out := make([]Key, len(c.keys))
	copy(out, c.keys)
	return out
}

// KeyAt returns the key at exactly time t.
func (c *Curve) KeyAt(t float64) (Key, bool) {
	i := c.search(t)
	if i < len(c.keys) && c.keys[i].Time == t {
		return c.keys[i], true
	}
	return Key{}, false
}

// AddKey inserts k, replacing any key at the same time.
func (c *Curve) AddKey(k Key) {
	i := c.search(k.Time)
	if i < len(c.keys) && c.keys[i].Time == k.Time {
		c.keys[i] = k
		return
	}
	c.keys = append(c.keys, Key{})
	copy(c.keys[i+1:], c.keys[i:])
	c.keys[i] = k
}

// RemoveKey removes the key at exactly time t.
func (c *Curve) RemoveKey(t float64) {
	i := c.search(t)
	if i < len(c.keys) && c.keys[i].Time == t {
		c.keys = append(c.keys[:i], c.keys[i+1:]...)
	}
}

func (c *Curve) search(t float64) int {
	return sort.Search(len(c.keys), func(i int) bool { return c.keys[i].Time >= t })
}

// Evaluate returns the curve value at time t. Values before the first key
// and after the last key hold the end values; an empty curve is 0.
func (c *Curve) Evaluate(t float64) float64 {
	if len(c.keys) == 0 {
		return 0
	}
	i := c.search(t)
	if i < len(c.keys) && c.keys[i].Time == t {
		return c.keys[i].Value
	}
	if i == 0 {
		return c.keys[0].Value
	}
	if i == len(c.keys) {
		return c.keys[len(c.keys)-1].Value
	}
	k0, k1 := c.keys[i-1], c.keys[i]
	if k0.Interpolation == InterpolationConstant {
		return k0.Value
	}
	fn := k0.Interpolation.tweenFunc()
	return float64(fn(float32(t-k0.Time), float32(k0.Value), float32(k1.Value-k0.Value), float32(k1.Time-k0.Time)))
}
