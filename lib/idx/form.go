package idx

import (
	"strings"
)

// Form is the ordered set of fields a remediation submits. Order matters
// when encoding, not when validating.
type Form struct {
	fields []*Field
}

func newForm(raw []rawField) *Form {
	f := &Form{fields: make([]*Field, 0, len(raw))}
	for _, r := range raw {
		f.fields = append(f.fields, newField(r))
	}
	return f
}

func (f *Form) Fields() []*Field {
	if f == nil {
		return nil
	}
	out := make([]*Field, len(f.fields))
	copy(out, f.fields)
	return out
}

func (f *Form) Len() int {
	if f == nil {
		return 0
	}
	return len(f.fields)
}

// Field returns the field with the given name. Dotted names descend into
// compound fields ("credentials.passcode"); unnamed containers are searched
// transparently.
func (f *Form) Field(name string) *Field {
	if f == nil || name == "" {
		return nil
	}
	head, rest := name, ""
	if i := strings.IndexByte(name, '.'); i >= 0 {
		head, rest = name[:i], name[i+1:]
	}
	found := f.find(head)
	if found == nil || rest == "" {
		return found
	}
	return found.Field(rest)
}

func (f *Form) find(name string) *Field {
	for _, field := range f.fields {
		if field.Name == name {
			return field
		}
	}
	for _, field := range f.fields {
		if field.Name == "" && field.Form != nil {
			if found := field.Form.find(name); found != nil {
				return found
			}
		}
	}
	return nil
}

// AllFields flattens nested forms, leaving option branches out since only a
// selected option contributes to the submission.
func (f *Form) AllFields() []*Field {
	if f == nil {
		return nil
	}
	var out []*Field
	for _, field := range f.fields {
		out = append(out, field)
		if field.Form != nil {
			out = append(out, field.Form.AllFields()...)
		}
	}
	return out
}

// reachable returns every field a caller could address, option branches
// included.
func (f *Form) reachable() []*Field {
	if f == nil {
		return nil
	}
	var out []*Field
	for _, field := range f.fields {
		out = append(out, field)
		out = append(out, field.nested()...)
	}
	return out
}

func (f *Form) resolve(p *Parameters) (map[string]Value, error) {
	out := map[string]Value{}
	if f == nil {
		return out, nil
	}
	for _, field := range f.fields {
		v, err := field.resolve(p)
		if err != nil {
			return nil, err
		}
		if v.IsNull() {
			if field.Required {
				return nil, missingRequiredParameter(field.Name)
			}
			continue
		}
		if field.Name != "" {
			out[field.Name] = v
			continue
		}
		if v.kind == ObjectKind {
			for k, e := range v.obj {
				out[k] = e
			}
		}
	}
	return out, nil
}
