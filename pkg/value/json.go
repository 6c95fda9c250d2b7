package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
)

// DecodeRecord parses one JSON text into a Record (top-level object).
// encoding/json's map[string]any decoding loses key order, so decoding
// walks the token stream directly to preserve it, as the data model
// requires ("key order is not semantically significant but is preserved
// for output stability").
func DecodeRecord(data []byte) (*Object, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, errors.Wrap(err, "decode record")
	}
	delim, ok := tok.(json.Delim)
	if !ok || delim != '{' {
		return nil, errors.New("top-level JSON value must be an object")
	}
	obj, err := decodeObjectBody(dec)
	if err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("trailing data after top-level object")
	}
	return obj, nil
}

func decodeObjectBody(dec *json.Decoder) (*Object, error) {
	obj := NewObject(8)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, errors.New("expected string object key")
		}
		v, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		obj.Set(key, v)
	}
	// consume the closing '}'
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return obj, nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj, err := decodeObjectBody(dec)
			if err != nil {
				return Value{}, err
			}
			return FromObject(obj), nil
		case '[':
			arr := make([]Value, 0, 4)
			for dec.More() {
				v, err := decodeValue(dec)
				if err != nil {
					return Value{}, err
				}
				arr = append(arr, v)
			}
			if _, err := dec.Token(); err != nil { // ']'
				return Value{}, err
			}
			return Array(arr), nil
		default:
			return Value{}, errors.Errorf("unexpected delimiter %v", t)
		}
	case json.Number:
		return numberValue(t)
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case nil:
		return Null(), nil
	default:
		return Value{}, errors.Errorf("unexpected token %v", t)
	}
}

func numberValue(n json.Number) (Value, error) {
	s := n.String()
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Int(i), nil
	}
	f, err := n.Float64()
	if err != nil {
		return Value{}, errors.Wrap(err, "decode number")
	}
	return Float(f), nil
}

// Encode serializes v as minimal-escaping, shortest-round-trippable JSON
// text. When sortedKeys is true, object members are emitted in lexical
// key order (the writer's opt-in "sorted keys" mode); otherwise insertion
// order is preserved.
func Encode(v Value, sortedKeys bool) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeInto(&buf, v, sortedKeys); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeInto(buf *bytes.Buffer, v Value, sortedKeys bool) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		if v.b {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case KindInt:
		buf.WriteString(strconv.FormatInt(v.i, 10))
	case KindFloat:
		buf.WriteString(formatFloat(v.f))
	case KindString:
		encodeString(buf, v.s)
	case KindArray:
		buf.WriteByte('[')
		for i, e := range v.arr {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := encodeInto(buf, e, sortedKeys); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindObject:
		buf.WriteByte('{')
		keys := v.obj.Keys()
		if sortedKeys {
			keys = v.obj.SortedKeys()
		}
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			encodeString(buf, k)
			buf.WriteByte(':')
			val, _ := v.obj.Get(k)
			if err := encodeInto(buf, val, sortedKeys); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("value: unknown kind %d", v.kind)
	}
	return nil
}

// formatFloat emits the shortest decimal string that round-trips exactly,
// in strconv's 'g' form: a decimal exponent below -4 or of 6 and above
// switches to exponent notation (1e+06, 1e-05), where encoding/json
// would write 1000000 and 0.00001.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func encodeString(buf *bytes.Buffer, s string) {
	b, _ := json.Marshal(s) // minimal-escaping string quoting; json.Marshal on a bare string never errors
	buf.Write(b)
}
