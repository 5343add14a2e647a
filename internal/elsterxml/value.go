package elsterxml

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind discriminates the value variants the serializer understands.
type Kind uint8

const (
	// KindAbsent is the zero Value; absent fields are never serialized.
	KindAbsent Kind = iota
	KindString
	KindInt
	KindDecimal
	KindDate
	KindBool
	KindRecord
	KindList
)

// Value is a tagged union over the payload value kinds. The zero Value
// means "absent", which is distinct from an empty string.
type Value struct {
	kind Kind
	str  string
	num  int64
	bit  bool
	date time.Time
	rec  *Record
	list []Value
}

// String wraps a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Int wraps an integer value.
func Int(n int64) Value { return Value{kind: KindInt, num: n} }

// Bool wraps a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, bit: b} }

// Date wraps a date value.
func Date(t time.Time) Value { return Value{kind: KindDate, date: t} }

// Rec wraps a nested record.
func Rec(r *Record) Value { return Value{kind: KindRecord, rec: r} }

// List wraps an ordered sequence; nil items inside are skipped on output.
func List(items ...Value) Value { return Value{kind: KindList, list: items} }

// Decimal wraps a decimal literal. The literal is normalized to a
// fixed-point representation without going through binary floats, so
// "1600.00" stays "1600.00" and "1.5e3" becomes "1500".
func Decimal(lit string) (Value, error) {
	normalized, err := normalizeDecimal(lit)
	if err != nil {
		return Value{}, err
	}
	return Value{kind: KindDecimal, str: normalized}, nil
}

// MustDecimal is Decimal for literals known to be valid.
func MustDecimal(lit string) Value {
	v, err := Decimal(lit)
	if err != nil {
		panic(err)
	}
	return v
}

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// IsAbsent reports whether the value is the absent zero value.
func (v Value) IsAbsent() bool { return v.kind == KindAbsent }

// Record returns the nested record for KindRecord values.
func (v Value) Record() *Record { return v.rec }

// Items returns the sequence for KindList values.
func (v Value) Items() []Value { return v.list }

// formatScalar renders a scalar value as element text. A non-scalar or
// unknown kind is a contract violation, not a recoverable condition.
func (v Value) formatScalar() (string, error) {
	switch v.kind {
	case KindString:
		return v.str, nil
	case KindInt:
		return strconv.FormatInt(v.num, 10), nil
	case KindDecimal:
		return v.str, nil
	case KindDate:
		return v.date.Format("20060102"), nil
	case KindBool:
		if v.bit {
			return "1", nil
		}
		return "0", nil
	default:
		return "", fmt.Errorf("elsterxml: cannot format value of kind %d", v.kind)
	}
}

// Field is one ordered record entry.
type Field struct {
	Key   string
	Value Value
}

// Record is an ordered, sparse set of fields. Set drops absent values,
// so a flattened record never contains anything unserializable by
// omission.
type Record struct {
	fields []Field
}

// NewRecord creates an empty record.
func NewRecord() *Record { return &Record{} }

// Set appends a field unless its value is absent.
func (r *Record) Set(key string, v Value) *Record {
	if v.IsAbsent() {
		return r
	}
	r.fields = append(r.fields, Field{Key: key, Value: v})
	return r
}

// Get returns the first value stored under key.
func (r *Record) Get(key string) (Value, bool) {
	for _, f := range r.fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Fields returns the ordered field view.
func (r *Record) Fields() []Field {
	if r == nil {
		return nil
	}
	return r.fields
}

// Len returns the number of present fields.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.fields)
}

// normalizeDecimal turns a decimal literal (optionally in exponent
// notation) into its fixed-point form using pure digit shifting.
func normalizeDecimal(lit string) (string, error) {
	s := strings.TrimSpace(lit)
	if s == "" {
		return "", fmt.Errorf("elsterxml: empty decimal literal")
	}

	mant := s
	exp := 0
	if i := strings.IndexAny(s, "eE"); i >= 0 {
		var err error
		exp, err = strconv.Atoi(s[i+1:])
		if err != nil {
			return "", fmt.Errorf("elsterxml: bad decimal exponent in %q", lit)
		}
		mant = s[:i]
	}

	sign := ""
	switch {
	case strings.HasPrefix(mant, "-"):
		sign = "-"
		mant = mant[1:]
	case strings.HasPrefix(mant, "+"):
		mant = mant[1:]
	}

	intPart := mant
	fracPart := ""
	if j := strings.IndexByte(mant, '.'); j >= 0 {
		intPart = mant[:j]
		fracPart = mant[j+1:]
	}
	if intPart == "" && fracPart == "" {
		return "", fmt.Errorf("elsterxml: bad decimal literal %q", lit)
	}
	for _, part := range []string{intPart, fracPart} {
		for _, c := range part {
			if c < '0' || c > '9' {
				return "", fmt.Errorf("elsterxml: bad decimal literal %q", lit)
			}
		}
	}

	digits := intPart + fracPart
	point := len(intPart) + exp

	var out string
	switch {
	case point <= 0:
		out = "0." + strings.Repeat("0", -point) + digits
	case point >= len(digits):
		out = digits + strings.Repeat("0", point-len(digits))
	default:
		out = digits[:point] + "." + digits[point:]
	}

	// Trim superfluous leading zeros in the integer portion; fractional
	// trailing zeros are significant for the authority and stay.
	dot := strings.IndexByte(out, '.')
	intDigits := out
	rest := ""
	if dot >= 0 {
		intDigits = out[:dot]
		rest = out[dot:]
	}
	intDigits = strings.TrimLeft(intDigits, "0")
	if intDigits == "" {
		intDigits = "0"
	}

	return sign + intDigits + rest, nil
}
