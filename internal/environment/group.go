package environment

// Group selects the environments an event influences and how strongly.
type Group struct {
	Name     string
	Positive bool

	members []*Environment
	bottom  float64
	top     float64
}

// NewGroup creates a group. Bounds go through SetBounds.
func NewGroup(name string, bottom, top float64, positive bool, members ...*Environment) *Group {
	g := &Group{Name: name, Positive: positive}
	g.SetBounds(bottom, top)
	for _, m := range members {
		g.AddMember(m)
	}
	return g
}

// SetBounds sets the influence percentage range. Negative bounds clamp to
// zero and an inverted range is swapped.
func (g *Group) SetBounds(bottom, top float64) {
	bottom = max(bottom, 0)
	top = max(top, 0)
	if bottom > top {
		bottom, top = top, bottom
	}
	g.bottom, g.top = bottom, top
}

// Bounds returns the influence percentage range.
func (g *Group) Bounds() (bottom, top float64) {
	return g.bottom, g.top
}

// AddMember appends e. Returns false if e is already a member.
func (g *Group) AddMember(e *Environment) bool {
	for _, m := range g.members {
		if m == e {
			return false
		}
	}
	g.members = append(g.members, e)
	return true
}

// Members returns the member environments in order.
func (g *Group) Members() []*Environment {
	out := make([]*Environment, len(g.members))
	copy(out, g.members)
	return out
}

// Sign is +1 for a positive group and -1 otherwise.
func (g *Group) Sign() float64 {
	if g.Positive {
		return 1
	}
	return -1
}
