package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// FieldType is the wire type a field is coerced to before validation
type FieldType int

const (
	String FieldType = iota
	Integer
	Boolean
	StringList
)

func (t FieldType) jsonType() string {
	switch t {
	case Integer:
		return "integer"
	case Boolean:
		return "boolean"
	case StringList:
		return "array"
	default:
		return "string"
	}
}

// Field declares one accepted form field and its rules. Fields are checked
// and reported in declaration order.
type Field struct {
	Name     string
	Type     FieldType
	Required bool
	// MinLength and MaxLength apply to strings; zero means unbounded.
	MinLength int
	MaxLength int
	// Format is one of FormatEmail, FormatURI or FormatISODate.
	Format string
	// Enum restricts strings, or the items of a StringList.
	Enum []string
	// Positive requires an Integer to be greater than zero.
	Positive bool
	// MustBeTrue requires a Boolean to be true.
	MustBeTrue bool
	// MinItems applies to a StringList.
	MinItems int
	// Default is used when the field is absent.
	Default any
	// Messages overrides the generated message per rule (see Rule* constants).
	Messages map[string]string
}

// Rule names used as keys in Field.Messages
const (
	RuleRequired = "required"
	RuleEmpty    = "empty"
	RuleMin      = "min"
	RuleMax      = "max"
	RuleFormat   = "format"
	RuleEnum     = "enum"
	RuleType     = "type"
	RulePositive = "positive"
	RuleMinItems = "min_items"
)

// FieldError is a single rule violation
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors is the complete set of violations found in one submission
type FieldErrors []FieldError

func (e FieldErrors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Schema validates raw form values against a field table and decodes them
// into T.
type Schema[T any] struct {
	fields []Field
	index  map[string]int
	schema *gojsonschema.Schema
}

// NewSchema compiles a field table into a JSON schema
func NewSchema[T any](fields []Field) (*Schema[T], error) {
	s := &Schema[T]{
		fields: fields,
		index:  make(map[string]int, len(fields)),
	}

	properties := make(map[string]any, len(fields))
	required := make([]string, 0, len(fields))
	for i, f := range fields {
		s.index[f.Name] = i
		properties[f.Name] = f.jsonSchema()
		if f.Required {
			required = append(required, f.Name)
		}
	}

	doc := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		doc["required"] = required
	}

	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	s.schema = compiled
	return s, nil
}

func (f Field) jsonSchema() map[string]any {
	p := map[string]any{"type": f.Type.jsonType()}

	switch f.Type {
	case String:
		minLength := f.MinLength
		if f.Required && minLength < 1 {
			minLength = 1
		}
		if minLength > 0 {
			p["minLength"] = minLength
		}
		if f.MaxLength > 0 {
			p["maxLength"] = f.MaxLength
		}
		if f.Format != "" {
			p["format"] = f.Format
		}
		if len(f.Enum) > 0 {
			p["enum"] = f.Enum
		}
	case Integer:
		if f.Positive {
			p["minimum"] = 1
		}
	case Boolean:
		if f.MustBeTrue {
			p["enum"] = []any{true}
		}
	case StringList:
		items := map[string]any{"type": "string"}
		if len(f.Enum) > 0 {
			items["enum"] = f.Enum
		}
		p["items"] = items
		if f.MinItems > 0 {
			p["minItems"] = f.MinItems
		}
	}
	return p
}

// Validate runs every rule against raw and returns the decoded value, or all
// violations ordered by field declaration order.
func (s *Schema[T]) Validate(raw map[string]any) (*T, FieldErrors) {
	values := s.coerce(raw)

	result, err := s.schema.Validate(gojsonschema.NewGoLoader(values))
	if err != nil {
		return nil, FieldErrors{{Field: "", Message: "Request body could not be read"}}
	}

	if !result.Valid() {
		return nil, s.collect(result.Errors(), values)
	}

	out := new(T)
	encoded, err := json.Marshal(values)
	if err != nil {
		return nil, FieldErrors{{Field: "", Message: "Request body could not be read"}}
	}
	if err := json.Unmarshal(encoded, out); err != nil {
		return nil, FieldErrors{{Field: "", Message: "Request body could not be read"}}
	}
	return out, nil
}

// coerce converts raw transport values into the declared field types. Unknown
// keys are dropped, strings are trimmed and empty optional values are treated
// as absent.
func (s *Schema[T]) coerce(raw map[string]any) map[string]any {
	out := make(map[string]any, len(s.fields))
	for _, f := range s.fields {
		v, ok := lookup(raw, f.Name)
		if ok {
			v, ok = f.coerce(v)
		}
		if !ok {
			if f.Default != nil {
				out[f.Name] = f.Default
			}
			continue
		}
		out[f.Name] = v
	}
	return out
}

func lookup(raw map[string]any, name string) (any, bool) {
	if v, ok := raw[name]; ok {
		return v, true
	}
	v, ok := raw[name+"[]"]
	return v, ok
}

// Bounds of float64 values that convert to int64 exactly.
const (
	minInt64 = -(1 << 63)
	maxInt64 = 1 << 63
)

// coerce returns the typed value and whether the field counts as present.
func (f Field) coerce(v any) (any, bool) {
	if v == nil {
		return nil, false
	}

	if f.Type == StringList {
		return f.coerceList(v)
	}

	v = first(v)
	if v == nil {
		return nil, false
	}
	if str, isString := v.(string); isString {
		str = strings.TrimSpace(str)
		if str == "" {
			// Required strings keep "" so the empty rule fires.
			return "", f.Required && f.Type == String
		}
		switch f.Type {
		case Integer:
			if n, err := strconv.ParseInt(str, 10, 64); err == nil {
				return n, true
			}
		case Boolean:
			if b, err := strconv.ParseBool(strings.ToLower(str)); err == nil {
				return b, true
			}
		case String:
			if f.Format == FormatISODate {
				return normalizeISODate(str), true
			}
		}
		return str, true
	}

	if n, isFloat := v.(float64); isFloat && f.Type == Integer && n == math.Trunc(n) {
		if n < minInt64 || n >= maxInt64 {
			// Keep it out of the integer type so the field reports a type error.
			return strconv.FormatFloat(n, 'g', -1, 64), true
		}
		return int64(n), true
	}
	return v, true
}

func (f Field) coerceList(v any) (any, bool) {
	var items []any
	switch t := v.(type) {
	case []string:
		for _, s := range t {
			items = append(items, s)
		}
	case []any:
		items = t
	case string:
		for _, part := range strings.Split(t, ",") {
			items = append(items, part)
		}
	default:
		return v, true
	}

	out := make([]any, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			out = append(out, s)
			continue
		}
		out = append(out, item)
	}
	return out, true
}

// first unwraps single-valued form fields.
func first(v any) any {
	switch t := v.(type) {
	case []string:
		if len(t) == 0 {
			return nil
		}
		return t[0]
	case []any:
		if len(t) == 0 {
			return nil
		}
		return t[0]
	}
	return v
}

type violation struct {
	field int
	order int
	err   FieldError
}

func (s *Schema[T]) collect(errs []gojsonschema.ResultError, values map[string]any) FieldErrors {
	found := make([]violation, 0, len(errs))
	seen := make(map[string]bool, len(errs))

	for i, re := range errs {
		path := re.Field()
		if re.Type() == "required" {
			if p, ok := re.Details()["property"].(string); ok {
				path = p
			}
		}

		name, item, _ := strings.Cut(path, ".")
		idx, known := s.index[name]
		if !known {
			continue
		}
		f := s.fields[idx]

		rule := ruleFor(re.Type(), values[name])
		if item == "" && values[name] == "" && rule != RuleEmpty {
			// An empty required string reports only that it is empty.
			continue
		}
		key := path + "|" + rule
		if seen[key] {
			continue
		}
		seen[key] = true

		found = append(found, violation{
			field: idx,
			order: i,
			err: FieldError{
				Field:   path,
				Message: f.message(rule, item),
			},
		})
	}

	sort.SliceStable(found, func(a, b int) bool {
		if found[a].field != found[b].field {
			return found[a].field < found[b].field
		}
		return found[a].order < found[b].order
	})

	out := make(FieldErrors, len(found))
	for i, v := range found {
		out[i] = v.err
	}
	return out
}

// ruleFor maps a gojsonschema error type onto a rule name.
func ruleFor(errType string, value any) string {
	switch errType {
	case "required":
		return RuleRequired
	case "string_gte":
		if value == "" {
			return RuleEmpty
		}
		return RuleMin
	case "string_lte":
		return RuleMax
	case "format":
		return RuleFormat
	case "enum":
		return RuleEnum
	case "number_gte":
		return RulePositive
	case "array_min_items":
		return RuleMinItems
	case "invalid_type":
		return RuleType
	default:
		return errType
	}
}
