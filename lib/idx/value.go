package idx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	NullKind Kind = iota
	StringKind
	NumberKind
	BoolKind
	ObjectKind
	ArrayKind
)

func (k Kind) String() string {
	switch k {
	case NullKind:
		return "null"
	case StringKind:
		return "string"
	case NumberKind:
		return "number"
	case BoolKind:
		return "boolean"
	case ObjectKind:
		return "object"
	case ArrayKind:
		return "array"
	}
	return "unknown"
}

// Value is a JSON value. The zero Value is null.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	obj  map[string]Value
	arr  []Value
}

func Null() Value { return Value{} }

func String(s string) Value { return Value{kind: StringKind, str: s} }

func Number(n float64) Value { return Value{kind: NumberKind, num: n} }

func Bool(b bool) Value { return Value{kind: BoolKind, b: b} }

// Object copies m into a new object Value.
func Object(m map[string]Value) Value {
	obj := make(map[string]Value, len(m))
	for k, v := range m {
		obj[k] = v
	}
	return Value{kind: ObjectKind, obj: obj}
}

func Array(vs ...Value) Value {
	arr := make([]Value, len(vs))
	copy(arr, vs)
	return Value{kind: ArrayKind, arr: arr}
}

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == NullKind }

func (v Value) StringValue() (string, bool) {
	return v.str, v.kind == StringKind
}

func (v Value) NumberValue() (float64, bool) {
	return v.num, v.kind == NumberKind
}

func (v Value) BoolValue() (bool, bool) {
	return v.b, v.kind == BoolKind
}

// ObjectValue returns a copy of the object's members.
func (v Value) ObjectValue() (map[string]Value, bool) {
	if v.kind != ObjectKind {
		return nil, false
	}
	m := make(map[string]Value, len(v.obj))
	for k, e := range v.obj {
		m[k] = e
	}
	return m, true
}

func (v Value) ArrayValue() ([]Value, bool) {
	if v.kind != ArrayKind {
		return nil, false
	}
	arr := make([]Value, len(v.arr))
	copy(arr, v.arr)
	return arr, true
}

// Get returns the member named key of an object Value, or null.
func (v Value) Get(key string) Value {
	if v.kind != ObjectKind {
		return Value{}
	}
	return v.obj[key]
}

// String renders strings bare and everything else as JSON.
func (v Value) String() string {
	if v.kind == StringKind {
		return v.str
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("<%s>", v.kind)
	}
	return string(b)
}

// Equal reports deep equality.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case NullKind:
		return true
	case StringKind:
		return v.str == o.str
	case NumberKind:
		return v.num == o.num
	case BoolKind:
		return v.b == o.b
	case ObjectKind:
		if len(v.obj) != len(o.obj) {
			return false
		}
		for k, e := range v.obj {
			oe, ok := o.obj[k]
			if !ok || !e.Equal(oe) {
				return false
			}
		}
		return true
	case ArrayKind:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Interface converts v to the types encoding/json produces when decoding
// into an interface{}.
func (v Value) Interface() interface{} {
	switch v.kind {
	case StringKind:
		return v.str
	case NumberKind:
		return v.num
	case BoolKind:
		return v.b
	case ObjectKind:
		m := make(map[string]interface{}, len(v.obj))
		for k, e := range v.obj {
			m[k] = e.Interface()
		}
		return m
	case ArrayKind:
		arr := make([]interface{}, len(v.arr))
		for i, e := range v.arr {
			arr[i] = e.Interface()
		}
		return arr
	}
	return nil
}

// ValueOf converts common Go values into a Value.
func ValueOf(i interface{}) (Value, error) {
	switch t := i.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case int:
		return Number(float64(t)), nil
	case int32:
		return Number(float64(t)), nil
	case int64:
		return Number(float64(t)), nil
	case float32:
		return Number(float64(t)), nil
	case float64:
		return Number(t), nil
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return Null(), err
		}
		return Number(n), nil
	case []interface{}:
		arr := make([]Value, len(t))
		for idx, e := range t {
			ev, err := ValueOf(e)
			if err != nil {
				return Null(), err
			}
			arr[idx] = ev
		}
		return Value{kind: ArrayKind, arr: arr}, nil
	case []string:
		arr := make([]Value, len(t))
		for idx, e := range t {
			arr[idx] = String(e)
		}
		return Value{kind: ArrayKind, arr: arr}, nil
	case map[string]interface{}:
		obj := make(map[string]Value, len(t))
		for k, e := range t {
			ev, err := ValueOf(e)
			if err != nil {
				return Null(), err
			}
			obj[k] = ev
		}
		return Value{kind: ObjectKind, obj: obj}, nil
	case map[string]string:
		obj := make(map[string]Value, len(t))
		for k, e := range t {
			obj[k] = String(e)
		}
		return Value{kind: ObjectKind, obj: obj}, nil
	}
	return Null(), fmt.Errorf("unsupported value type %T: %w", i, ErrInvalidRequestData)
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case NullKind:
		return []byte("null"), nil
	case StringKind:
		return json.Marshal(v.str)
	case NumberKind:
		return []byte(strconv.FormatFloat(v.num, 'f', -1, 64)), nil
	case BoolKind:
		return json.Marshal(v.b)
	case ObjectKind:
		keys := make([]string, 0, len(v.obj))
		for k := range v.obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return nil, err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			eb, err := v.obj[k].MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(eb)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	case ArrayKind:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, e := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			eb, err := e.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(eb)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("unknown value kind %d", v.kind)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	parsed, err := ValueOf(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
