package grid

import "encoding/json"

// Item is a rectangular unit placed on the grid by integer cell coordinates.
// The JSON field names match the persisted layout format consumed by hosts
// and persistence backends.
//
// The zero value is not usable on its own - W and H must be at least 1 before
// the item passes validation. An empty ID is allowed on AddItem, where the
// store generates one.
type Item struct {
	ID      string          `json:"i" bson:"i"`
	X       int             `json:"x" bson:"x"`
	Y       int             `json:"y" bson:"y"`
	W       int             `json:"w" bson:"w"`
	H       int             `json:"h" bson:"h"`
	MinW    int             `json:"minW,omitempty" bson:"minW,omitempty"`
	MinH    int             `json:"minH,omitempty" bson:"minH,omitempty"`
	MaxW    int             `json:"maxW,omitempty" bson:"maxW,omitempty"`
	MaxH    int             `json:"maxH,omitempty" bson:"maxH,omitempty"`
	Static  bool            `json:"static,omitempty" bson:"static,omitempty"`
	Type    string          `json:"type,omitempty" bson:"type,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty" bson:"payload,omitempty"`
}

// Overlaps reports whether the rectangles of two items intersect.
func (it Item) Overlaps(other Item) bool {
	if it.X+it.W <= other.X || other.X+other.W <= it.X {
		return false
	}
	if it.Y+it.H <= other.Y || other.Y+other.H <= it.Y {
		return false
	}
	return true
}

// Clone returns a deep copy of the item, including the payload bytes.
func (it Item) Clone() Item {
	out := it
	if it.Payload != nil {
		out.Payload = make(json.RawMessage, len(it.Payload))
		copy(out.Payload, it.Payload)
	}
	return out
}

// CloneLayout returns a deep copy of a layout slice. The result never aliases
// the input, so collaborators (history, responsive cache) can hold it without
// aliasing the live state.
func CloneLayout(items []Item) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}

// Patch describes a partial item update. Nil fields are left unchanged.
// Geometry fields are validated against the grid config before commit.
type Patch struct {
	X       *int
	Y       *int
	W       *int
	H       *int
	MinW    *int
	MinH    *int
	MaxW    *int
	MaxH    *int
	Static  *bool
	Type    *string
	Payload json.RawMessage
}

// apply returns a copy of it with the non-nil patch fields applied.
func (p Patch) apply(it Item) Item {
	out := it.Clone()
	if p.X != nil {
		out.X = *p.X
	}
	if p.Y != nil {
		out.Y = *p.Y
	}
	if p.W != nil {
		out.W = *p.W
	}
	if p.H != nil {
		out.H = *p.H
	}
	if p.MinW != nil {
		out.MinW = *p.MinW
	}
	if p.MinH != nil {
		out.MinH = *p.MinH
	}
	if p.MaxW != nil {
		out.MaxW = *p.MaxW
	}
	if p.MaxH != nil {
		out.MaxH = *p.MaxH
	}
	if p.Static != nil {
		out.Static = *p.Static
	}
	if p.Type != nil {
		out.Type = *p.Type
	}
	if p.Payload != nil {
		out.Payload = make(json.RawMessage, len(p.Payload))
		copy(out.Payload, p.Payload)
	}
	return out
}

// IntPtr returns a pointer to v, for building Patch values.
func IntPtr(v int) *int { return &v }

// BoolPtr returns a pointer to v, for building Patch values.
func BoolPtr(v bool) *bool { return &v }

// StringPtr returns a pointer to v, for building Patch values.
func StringPtr(v string) *string { return &v }
