package main

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Entry is one placeholder and its replacement value.
type Entry struct {
	Key   string
	Value interface{}
}

// Mapping holds the placeholders of a page in document order. Values are
// string, json.Number, bool, nil, []interface{} or Mapping.
type Mapping []Entry

// ParseMapping decodes a JSON object while keeping the order of its keys.
// A repeated key keeps its first position and takes the last value.
func ParseMapping(data []byte) (Mapping, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("mapping is not valid JSON")
	}

	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, fmt.Errorf("mapping must be a JSON object, found %s", doc.Type)
	}

	return decodeObject(doc), nil
}

func decodeObject(obj gjson.Result) Mapping {
	m := Mapping{}
	index := make(map[string]int)

	obj.ForEach(func(key, value gjson.Result) bool {
		v := decodeValue(value)
		if i, seen := index[key.Str]; seen {
			m[i].Value = v
			return true
		}
		index[key.Str] = len(m)
		m = append(m, Entry{Key: key.Str, Value: v})
		return true
	})

	return m
}

func decodeValue(value gjson.Result) interface{} {
	switch value.Type {
	case gjson.Null:
		return nil
	case gjson.False:
		return false
	case gjson.True:
		return true
	case gjson.Number:
		return json.Number(value.Raw)
	case gjson.String:
		return value.Str
	}

	if value.IsObject() {
		return decodeObject(value)
	}

	list := []interface{}{}
	value.ForEach(func(_, item gjson.Result) bool {
		list = append(list, decodeValue(item))
		return true
	})
	return list
}

// Normalize unwraps every value that is a list of exactly one element.
// Lists of any other length are left alone.
func (m Mapping) Normalize() Mapping {
	out := make(Mapping, len(m))
	for i, e := range m {
		if list, ok := e.Value.([]interface{}); ok && len(list) == 1 {
			e.Value = list[0]
		}
		out[i] = e
	}
	return out
}

// Stringify renders a mapping value as text. Strings are used verbatim;
// everything else is printed the way the statistics scripts' consumers
// always printed it: True/False, None, 42, 42.0, [1, 'a'], {'k': 1}.
func Stringify(value interface{}) string {
	if s, ok := value.(string); ok {
		return s
	}
	return repr(value)
}

func repr(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "None"
	case bool:
		if v {
			return "True"
		}
		return "False"
	case string:
		return quote(v)
	case json.Number:
		return formatNumber(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return formatFloat(v)
	case []interface{}:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = repr(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case Mapping:
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = quote(e.Key) + ": " + repr(e.Value)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprint(v)
	}
}

func quote(s string) string {
	q := "'"
	if strings.Contains(s, "'") && !strings.Contains(s, `"`) {
		q = `"`
	}

	var b strings.Builder
	b.WriteString(q)
	for _, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case string(r) == q:
			b.WriteString(`\` + q)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteString(q)
	return b.String()
}

func formatNumber(n json.Number) string {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return strconv.FormatInt(i, 10)
		}
		// integers past int64 are printed as written
		return strings.TrimPrefix(s, "+")
	}
	f, err := n.Float64()
	if err != nil {
		return s
	}
	return formatFloat(f)
}

// formatFloat prints the shortest round-tripping form, switching to
// exponent notation below 1e-4 and from 1e16 upwards.
func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}

	exp := strconv.FormatFloat(f, 'e', -1, 64)
	mantissa, power := exp, 0
	if i := strings.IndexByte(exp, 'e'); i >= 0 {
		mantissa = exp[:i]
		power, _ = strconv.Atoi(exp[i+1:])
	}

	if f != 0 && (power < -4 || power >= 16) {
		return mantissa + "e" + formatExponent(power)
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func formatExponent(power int) string {
	sign := "+"
	if power < 0 {
		sign = "-"
		power = -power
	}
	return fmt.Sprintf("%s%02d", sign, power)
}
