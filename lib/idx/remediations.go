package idx

// Remediations is the ordered set of steps available in one Response.
type Remediations struct {
	all []*Remediation
}

func (c *Remediations) All() []*Remediation {
	if c == nil {
		return nil
	}
	out := make([]*Remediation, len(c.all))
	copy(out, c.all)
	return out
}

func (c *Remediations) Len() int {
	if c == nil {
		return 0
	}
	return len(c.all)
}

// Get returns the first remediation of type t, or nil.
func (c *Remediations) Get(t RemediationType) *Remediation {
	if c == nil || t == RemediationUnknown {
		return nil
	}
	for _, r := range c.all {
		if r.Type == t {
			return r
		}
	}
	return nil
}

// Named looks a remediation up by its raw name, which also finds steps
// this package does not know a type for.
func (c *Remediations) Named(name string) *Remediation {
	if c == nil {
		return nil
	}
	for _, r := range c.all {
		if r.Name == name {
			return r
		}
	}
	return nil
}

// WithField returns the first remediation whose form has a field named
// name.
func (c *Remediations) WithField(name string) *Remediation {
	if c == nil {
		return nil
	}
	for _, r := range c.all {
		if r.Form.Field(name) != nil {
			return r
		}
	}
	return nil
}

// Has reports whether a remediation of type t is on offer.
func (c *Remediations) Has(t RemediationType) bool {
	return c.Get(t) != nil
}
