package idx

// Parameters holds the values a caller supplies for a remediation, keyed by
// Field identity. The zero value is ready to use. A nil *Parameters means
// "use the defaults"; setting a value on it returns a new Parameters.
type Parameters struct {
	values     map[*Field]Value
	selections map[*Field]*Field
}

func NewParameters() *Parameters {
	return &Parameters{
		values:     map[*Field]Value{},
		selections: map[*Field]*Field{},
	}
}

// Set supplies a value for field.
func (p *Parameters) Set(field *Field, v Value) *Parameters {
	if p == nil {
		p = NewParameters()
	}
	if p.values == nil {
		p.values = map[*Field]Value{}
	}
	p.values[field] = v
	return p
}

func (p *Parameters) SetString(field *Field, s string) *Parameters {
	return p.Set(field, String(s))
}

func (p *Parameters) SetBool(field *Field, b bool) *Parameters {
	return p.Set(field, Bool(b))
}

// Select chooses one of field's options.
func (p *Parameters) Select(field, option *Field) *Parameters {
	if p == nil {
		p = NewParameters()
	}
	if p.selections == nil {
		p.selections = map[*Field]*Field{}
	}
	p.selections[field] = option
	return p
}

func (p *Parameters) value(field *Field) (Value, bool) {
	if p == nil {
		return Null(), false
	}
	v, ok := p.values[field]
	return v, ok
}

func (p *Parameters) selected(field *Field) *Field {
	if p == nil {
		return nil
	}
	return p.selections[field]
}

func (p *Parameters) Len() int {
	if p == nil {
		return 0
	}
	return len(p.values) + len(p.selections)
}

// validate checks every supplied key against the fields reachable from
// form: unknown fields, values for immutable fields and selections of
// foreign options are all rejected.
func (p *Parameters) validate(form *Form) error {
	if p.Len() == 0 {
		return nil
	}
	reachable := map[*Field]struct{}{}
	for _, f := range form.reachable() {
		reachable[f] = struct{}{}
	}
	for field, v := range p.values {
		if _, ok := reachable[field]; !ok {
			return invalidParameter(field.Name)
		}
		if !field.Mutable && !v.IsNull() {
			return parameterImmutable(field.Name)
		}
	}
	for field, option := range p.selections {
		if _, ok := reachable[field]; !ok {
			return invalidParameter(field.Name)
		}
		if !field.Mutable {
			return parameterImmutable(field.Name)
		}
		if option == nil || !field.hasOption(option) {
			return invalidParameter(field.Name)
		}
	}
	return nil
}
