package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Kind is the type of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	}
	return "unknown"
}

// Value is a dynamically typed value found in optimizer payloads.
// The zero value is null.
type Value struct {
	kind Kind
	b    bool
	n    float64
	// lit is the number text as received, it is what gets encoded back.
	lit  string
	s    string
	obj  *Row
	arr  []Value
}

func Null() Value             { return Value{} }
func Bool(b bool) Value       { return Value{kind: KindBool, b: b} }
func Int(n int64) Value       { return Value{kind: KindNumber, n: float64(n), lit: strconv.FormatInt(n, 10)} }
func String(s string) Value   { return Value{kind: KindString, s: s} }
func Array(vs ...Value) Value { return Value{kind: KindArray, arr: vs} }

// Number returns a number value, NaN and infinities can't be encoded to JSON.
func Number(n float64) Value {
	if math.IsInf(n, 0) || math.IsNaN(n) {
		return Value{kind: KindNumber, n: n}
	}
	return Value{kind: KindNumber, n: n, lit: formatNumber(n)}
}

func Object(r *Row) Value {
	if r == nil {
		r = NewRow()
	}
	return Value{kind: KindObject, obj: r}
}

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) AsBool() (bool, bool)      { return v.b, v.kind == KindBool }
func (v Value) AsNumber() (float64, bool) { return v.n, v.kind == KindNumber }
func (v Value) AsString() (string, bool)  { return v.s, v.kind == KindString }
func (v Value) AsObject() (*Row, bool)    { return v.obj, v.kind == KindObject }
func (v Value) AsArray() ([]Value, bool)  { return v.arr, v.kind == KindArray }

// numberLiteral returns a Value for a JSON number literal. Numbers out of the
// float64 range are kept, only their comparison value saturates.
func numberLiteral(lit string) (Value, error) {
	n, err := strconv.ParseFloat(lit, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return Value{}, fmt.Errorf("invalid number %q: %w", lit, ErrNotValid)
	}
	return Value{kind: KindNumber, n: n, lit: lit}, nil
}

// Literal returns the number text as received (or formatted when built in code).
func (v Value) Literal() (string, bool) {
	if v.kind != KindNumber || v.lit == "" {
		return "", false
	}
	return v.lit, true
}

// IntegerLiteral returns the number text when it is a plain integer of any size.
func (v Value) IntegerLiteral() (string, bool) {
	lit, ok := v.Literal()
	if !ok {
		return "", false
	}
	digits := strings.TrimPrefix(lit, "-")
	if digits == "" {
		return "", false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return lit, true
}

// AsInt returns the value as an integer when it is an integral number or
// a string holding one. Integers that do not fit in an int64 are not ints.
func (v Value) AsInt() (int64, bool) {
	switch v.kind {
	case KindNumber:
		if v.lit != "" {
			n, err := strconv.ParseInt(v.lit, 10, 64)
			if err == nil {
				return n, true
			}
			if errors.Is(err, strconv.ErrRange) {
				return 0, false
			}
		}
		// Integral values written as decimals or exponents (e.g. `7.0`, `1e3`).
		if v.n != math.Trunc(v.n) || math.IsInf(v.n, 0) || math.IsNaN(v.n) {
			return 0, false
		}
		if v.n < -(1<<63) || v.n >= 1<<63 {
			return 0, false
		}
		return int64(v.n), true
	case KindString:
		n, err := strconv.ParseInt(strings.TrimSpace(v.s), 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// Clone returns a deep copy of the value.
func (v Value) Clone() Value {
	switch v.kind {
	case KindObject:
		return Object(v.obj.Clone())
	case KindArray:
		arr := make([]Value, len(v.arr))
		for i, e := range v.arr {
			arr[i] = e.Clone()
		}
		return Value{kind: KindArray, arr: arr}
	}
	return v
}

// String renders the value in a canonical form (JSON for composites).
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		if v.lit != "" {
			return v.lit
		}
		return formatNumber(v.n)
	case KindString:
		return v.s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

func formatNumber(n float64) string { return strconv.FormatFloat(n, 'f', -1, 64) }

// MarshalJSON satisfies json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return json.Marshal(v.b)
	case KindNumber:
		if v.lit != "" {
			return []byte(v.lit), nil
		}
		if math.IsInf(v.n, 0) || math.IsNaN(v.n) {
			return nil, fmt.Errorf("unsupported number %v: %w", v.n, ErrNotValid)
		}
		return []byte(formatNumber(v.n)), nil
	case KindString:
		return json.Marshal(v.s)
	case KindObject:
		return v.obj.MarshalJSON()
	case KindArray:
		arr := v.arr
		if arr == nil {
			arr = []Value{}
		}
		return json.Marshal(arr)
	}
	return nil, fmt.Errorf("unknown value kind %d", v.kind)
}

// UnmarshalJSON satisfies json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := newDecoder(data)
	val, err := decodeValue(dec)
	if err != nil {
		return err
	}
	if err := expectEOF(dec); err != nil {
		return err
	}
	*v = val
	return nil
}

// Row is an ordered mapping of keys to values, it keeps the insertion order
// of the keys so payloads are returned the way the optimizer sent them.
type Row struct {
	keys   []string
	values map[string]Value
}

// NewRow returns an empty row.
func NewRow() *Row {
	return &Row{values: map[string]Value{}}
}

// Len returns the number of keys.
func (r *Row) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// Keys returns the keys in order.
func (r *Row) Keys() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.keys...)
}

// Get returns the value of a top level key.
func (r *Row) Get(key string) (Value, bool) {
	if r == nil {
		return Value{}, false
	}
	v, ok := r.values[key]
	return v, ok
}

// Set sets a key, new keys are appended at the end, existing ones keep their position.
func (r *Row) Set(key string, v Value) *Row {
	if r.values == nil {
		r.values = map[string]Value{}
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = v
	return r
}

// Lookup resolves a dotted path (e.g. `cost.total`) walking nested objects.
// A missing segment at any level returns false.
func (r *Row) Lookup(path string) (Value, bool) {
	if r == nil || path == "" {
		return Value{}, false
	}

	current := r
	segments := strings.Split(path, ".")
	for i, seg := range segments {
		v, ok := current.Get(seg)
		if !ok {
			return Value{}, false
		}
		if i == len(segments)-1 {
			return v, true
		}
		obj, ok := v.AsObject()
		if !ok {
			return Value{}, false
		}
		current = obj
	}
	return Value{}, false
}

// Clone returns a deep copy of the row.
func (r *Row) Clone() *Row {
	if r == nil {
		return nil
	}
	cp := &Row{
		keys:   append([]string(nil), r.keys...),
		values: make(map[string]Value, len(r.values)),
	}
	for k, v := range r.values {
		cp.values[k] = v.Clone()
	}
	return cp
}

// MarshalJSON satisfies json.Marshaler.
func (r *Row) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := r.values[k].MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON satisfies json.Unmarshaler.
func (r *Row) UnmarshalJSON(data []byte) error {
	dec := newDecoder(data)
	v, err := decodeValue(dec)
	if err != nil {
		return err
	}
	if err := expectEOF(dec); err != nil {
		return err
	}
	obj, ok := v.AsObject()
	if !ok {
		return fmt.Errorf("expected JSON object, got %s: %w", v.Kind(), ErrNotValid)
	}
	*r = *obj
	return nil
}

func newDecoder(data []byte) *json.Decoder {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec
}

func expectEOF(dec *json.Decoder) error {
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("unexpected data after JSON value: %w", ErrNotValid)
	}
	return nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, fmt.Errorf("could not decode JSON: %w", err)
	}

	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case json.Number:
		return numberLiteral(t.String())
	case string:
		return String(t), nil
	case json.Delim:
		switch t {
		case '{':
			row := NewRow()
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return Value{}, fmt.Errorf("could not decode JSON key: %w", err)
				}
				key, ok := kt.(string)
				if !ok {
					return Value{}, fmt.Errorf("invalid JSON object key %v: %w", kt, ErrNotValid)
				}
				v, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				row.Set(key, v)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, fmt.Errorf("could not decode JSON object end: %w", err)
			}
			return Object(row), nil
		case '[':
			arr := []Value{}
			for dec.More() {
				v, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				arr = append(arr, v)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, fmt.Errorf("could not decode JSON array end: %w", err)
			}
			return Array(arr...), nil
		}
	}

	return Value{}, fmt.Errorf("unexpected JSON token %v: %w", tok, ErrNotValid)
}

// ValueFromAny converts plain Go values (as produced by YAML or JSON
// decoders into `any`) into a Value.
func ValueFromAny(in any) (Value, error) {
	switch t := in.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case bool:
		return Bool(t), nil
	case int:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint64:
		return numberLiteral(strconv.FormatUint(t, 10))
	case float64:
		return Number(t), nil
	case float32:
		return Number(float64(t)), nil
	case json.Number:
		return numberLiteral(t.String())
	case string:
		return String(t), nil
	case []any:
		arr := make([]Value, 0, len(t))
		for _, e := range t {
			v, err := ValueFromAny(e)
			if err != nil {
				return Value{}, err
			}
			arr = append(arr, v)
		}
		return Array(arr...), nil
	case map[string]any:
		// Plain maps have no order, we don't have any other option than sorting the keys.
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		row := NewRow()
		for _, k := range keys {
			v, err := ValueFromAny(t[k])
			if err != nil {
				return Value{}, fmt.Errorf("key %q: %w", k, err)
			}
			row.Set(k, v)
		}
		return Object(row), nil
	}
	return Value{}, fmt.Errorf("unsupported type %T: %w", in, ErrNotValid)
}
