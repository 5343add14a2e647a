package ustva

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"tdp/internal/elsterxml"
)

// Extras collects fields outside a section's declared schema, in input
// order. The authority accepts arbitrary form-line codes (kz fields), so
// the schema cannot enumerate them; they ride along here and are
// serialized after the declared fields.
type Extras struct {
	fields []elsterxml.Field
}

// Len returns the number of captured extra fields.
func (e *Extras) Len() int { return len(e.fields) }

// Fields returns the ordered extra fields.
func (e *Extras) Fields() []elsterxml.Field { return e.fields }

func (e *Extras) append(key string, v elsterxml.Value) {
	e.fields = append(e.fields, elsterxml.Field{Key: key, Value: v})
}

func (e *Extras) addTo(rec *elsterxml.Record) {
	for _, f := range e.fields {
		rec.Set(f.Key, f.Value)
	}
}

// setter consumes the raw JSON of one known field.
type setter func(raw json.RawMessage) error

var nullLiteral = []byte("null")

// decodeObject walks a JSON object with a streaming decoder so unknown
// keys keep their document order. Known keys go through their setters;
// everything else lands in extras as codec values. Numbers stay in
// their literal form, which is what keeps decimals exact.
func decodeObject(data []byte, known map[string]setter, extras *Extras) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, nullLiteral) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("ustva: expected object, got %v", tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key := keyTok.(string)

		if set, ok := known[key]; ok {
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				return fmt.Errorf("ustva: field %q: %w", key, err)
			}
			if bytes.Equal(bytes.TrimSpace(raw), nullLiteral) {
				continue
			}
			if err := set(raw); err != nil {
				return fmt.Errorf("ustva: field %q: %w", key, err)
			}
			continue
		}

		value, err := readValue(dec)
		if err != nil {
			return fmt.Errorf("ustva: field %q: %w", key, err)
		}
		if !value.IsAbsent() {
			extras.append(key, value)
		}
	}

	// Consume the closing brace.
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// readValue converts the next JSON value into a codec value, preserving
// object key order and dropping nulls.
func readValue(dec *json.Decoder) (elsterxml.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return elsterxml.Value{}, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			rec := elsterxml.NewRecord()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return elsterxml.Value{}, err
				}
				value, err := readValue(dec)
				if err != nil {
					return elsterxml.Value{}, err
				}
				rec.Set(keyTok.(string), value)
			}
			if _, err := dec.Token(); err != nil {
				return elsterxml.Value{}, err
			}
			return elsterxml.Rec(rec), nil

		case '[':
			var items []elsterxml.Value
			for dec.More() {
				item, err := readValue(dec)
				if err != nil {
					return elsterxml.Value{}, err
				}
				if !item.IsAbsent() {
					items = append(items, item)
				}
			}
			if _, err := dec.Token(); err != nil {
				return elsterxml.Value{}, err
			}
			return elsterxml.List(items...), nil
		}
		return elsterxml.Value{}, fmt.Errorf("unexpected delimiter %v", t)

	case string:
		return elsterxml.String(t), nil

	case json.Number:
		lit := t.String()
		if strings.ContainsAny(lit, ".eE") {
			return elsterxml.Decimal(lit)
		}
		n, err := t.Int64()
		if err != nil {
			return elsterxml.Decimal(lit)
		}
		return elsterxml.Int(n), nil

	case bool:
		return elsterxml.Bool(t), nil

	case nil:
		return elsterxml.Value{}, nil
	}

	return elsterxml.Value{}, fmt.Errorf("unexpected token %v", tok)
}

func setString(dst **string) setter {
	return func(raw json.RawMessage) error {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		*dst = &s
		return nil
	}
}

func setPlainString(dst *string) setter {
	return func(raw json.RawMessage) error {
		return json.Unmarshal(raw, dst)
	}
}

func setInt(dst **int64) setter {
	return func(raw json.RawMessage) error {
		var n int64
		if err := json.Unmarshal(raw, &n); err != nil {
			return err
		}
		*dst = &n
		return nil
	}
}

func setBool(dst **bool) setter {
	return func(raw json.RawMessage) error {
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return err
		}
		*dst = &b
		return nil
	}
}

func setDate(dst **Date) setter {
	return func(raw json.RawMessage) error {
		var d Date
		if err := json.Unmarshal(raw, &d); err != nil {
			return err
		}
		*dst = &d
		return nil
	}
}

func setObject[T any](dst **T) setter {
	return func(raw json.RawMessage) error {
		v := new(T)
		if err := json.Unmarshal(raw, v); err != nil {
			return err
		}
		*dst = v
		return nil
	}
}
