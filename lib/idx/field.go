package idx

import (
	"strings"
)

// Field describes one input of a remediation form. A Field with an empty
// Name is a transparent container: its nested form's values are merged into
// the parent rather than nested under a key.
type Field struct {
	Name     string
	Label    string
	Type     string
	Value    Value
	Required bool
	Mutable  bool
	Visible  bool
	Secret   bool

	// Form is set for compound fields.
	Form *Form
	// Options are the selectable variants of a "choose one" field. An
	// option may carry its own nested Form.
	Options []*Field

	Messages []Message

	relatesTo     string
	authenticator *Authenticator
}

func newField(raw rawField) *Field {
	f := &Field{
		Name:      raw.Name,
		Label:     raw.Label,
		Type:      raw.Type,
		Value:     raw.Value,
		Required:  boolOr(raw.Required, false),
		Mutable:   boolOr(raw.Mutable, true),
		Visible:   boolOr(raw.Visible, true),
		Secret:    raw.Secret,
		Messages:  newMessages(raw.Messages),
		relatesTo: raw.RelatesTo,
	}
	switch {
	case raw.Form != nil:
		f.Form = newForm(raw.Form.Value)
	case raw.ValueForm != nil:
		f.Form = newForm(raw.ValueForm.Value)
	}
	for _, o := range raw.Options {
		f.Options = append(f.Options, newField(o))
	}
	return f
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

// Authenticator returns the authenticator this field refers to, if the
// server linked one and it could be resolved.
func (f *Field) Authenticator() *Authenticator {
	return f.authenticator
}

// RelatesTo returns the raw relatesTo path, or "".
func (f *Field) RelatesTo() string {
	return f.relatesTo
}

// HasDefault reports whether the server pre-populated a value.
func (f *Field) HasDefault() bool {
	return !f.Value.IsNull()
}

// Option finds an option by label, or by its string value.
func (f *Field) Option(labelOrValue string) *Field {
	for _, o := range f.Options {
		if strings.EqualFold(o.Label, labelOrValue) {
			return o
		}
		if s, ok := o.Value.StringValue(); ok && s == labelOrValue {
			return o
		}
	}
	return nil
}

// Field looks up a nested field by (dotted) name.
func (f *Field) Field(name string) *Field {
	if f.Form == nil {
		return nil
	}
	return f.Form.Field(name)
}

func (f *Field) hasOption(option *Field) bool {
	for _, o := range f.Options {
		if o == option {
			return true
		}
	}
	return false
}

// resolve evaluates the field against the caller's parameters. A null
// result means "no value"; the parent form decides whether that is an error.
func (f *Field) resolve(p *Parameters) (Value, error) {
	if f.Name == "" {
		if sel := p.selected(f); sel != nil {
			return sel.resolveOption(p)
		}
		if f.Form != nil {
			obj, err := f.Form.resolve(p)
			if err != nil {
				return Null(), err
			}
			return Value{kind: ObjectKind, obj: obj}, nil
		}
		return Null(), nil
	}

	if v, ok := p.value(f); ok && !v.IsNull() {
		return v, nil
	}
	if sel := p.selected(f); sel != nil {
		return sel.resolveOption(p)
	}
	if f.Form != nil {
		obj, err := f.Form.resolve(p)
		if err != nil {
			return Null(), err
		}
		if len(obj) == 0 && !f.Required {
			return Null(), nil
		}
		return Value{kind: ObjectKind, obj: obj}, nil
	}
	return f.Value, nil
}

func (f *Field) resolveOption(p *Parameters) (Value, error) {
	if f.Form != nil {
		obj, err := f.Form.resolve(p)
		if err != nil {
			return Null(), err
		}
		return Value{kind: ObjectKind, obj: obj}, nil
	}
	return f.Value, nil
}

// nested returns the fields reachable from this one, including every
// option branch.
func (f *Field) nested() []*Field {
	var out []*Field
	if f.Form != nil {
		out = append(out, f.Form.reachable()...)
	}
	for _, o := range f.Options {
		out = append(out, o)
		out = append(out, o.nested()...)
	}
	return out
}
