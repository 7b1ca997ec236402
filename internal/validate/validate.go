// Package validate implements declarative request validation. A Schema
// describes the expected shape of a request's body, query and params as
// plain data; applying it either yields a fully normalized request or the
// complete list of field-level violations. There is no partial acceptance:
// one bad field rejects the request wholesale.
package validate

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Kind is the type constraint applied to a field.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindInteger
	KindBool
	KindEmail
	KindObjectID
	KindDate
)

var (
	objectIDRx = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)
	emailRx    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Field declares one expected field. Zero values mean "no constraint";
// numeric bounds use pointers so that zero remains expressible as a bound.
type Field struct {
	Name        string
	Kind        Kind
	Required    bool
	Default     any
	Min         *float64
	Max         *float64
	MinLen      int
	MaxLen      int
	Pattern     *regexp.Regexp
	Enum        []string
	MaxDecimals int // 0 = unconstrained; amounts use 2
}

// Schema describes a route's request shape. Schemas are defined once at
// package init and never mutated afterwards.
type Schema struct {
	Body   []Field
	Query  []Field
	Params []Field
	// AllowUnknownBody keeps undeclared body fields in the normalized
	// output instead of dropping them.
	AllowUnknownBody bool
}

// FieldError is a single violation. Path names the offending field; the
// wire envelope serializes it under "field".
type FieldError struct {
	Path    string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string { return e.Path + ": " + e.Message }

// Request is the normalized request produced by a successful Apply: types
// coerced, defaults applied, strings trimmed, unknown fields stripped.
type Request struct {
	Body   map[string]any
	Query  map[string]any
	Params map[string]string
}

// F64 returns a pointer to v, for use as a Field bound.
func F64(v float64) *float64 { return &v }

// Apply validates raw request parts against the schema. It runs to
// completion collecting every violation so the caller gets one complete
// error report, and returns the normalized request only when that report is
// empty.
func (s *Schema) Apply(body map[string]any, query url.Values, params map[string]string) (*Request, []FieldError) {
	var errs []FieldError
	out := &Request{
		Body:   make(map[string]any),
		Query:  make(map[string]any),
		Params: make(map[string]string),
	}

	for _, f := range s.Body {
		raw, ok := body[f.Name]
		v, fe := f.normalize(raw, ok)
		if fe != nil {
			errs = append(errs, *fe)
			continue
		}
		if v != nil {
			out.Body[f.Name] = v
		}
	}
	if s.AllowUnknownBody {
		declared := make(map[string]bool, len(s.Body))
		for _, f := range s.Body {
			declared[f.Name] = true
		}
		for k, v := range body {
			if !declared[k] {
				out.Body[k] = v
			}
		}
	}

	for _, f := range s.Query {
		raw, ok := firstQuery(query, f.Name)
		v, fe := f.normalize(raw, ok)
		if fe != nil {
			errs = append(errs, *fe)
			continue
		}
		if v != nil {
			out.Query[f.Name] = v
		}
	}

	for _, f := range s.Params {
		raw, ok := params[f.Name]
		v, fe := f.normalize(raw, ok && raw != "")
		if fe != nil {
			errs = append(errs, *fe)
			continue
		}
		if v != nil {
			out.Params[f.Name] = fmt.Sprint(v)
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return out, nil
}

func firstQuery(q url.Values, name string) (any, bool) {
	if q == nil {
		return nil, false
	}
	vs, ok := q[name]
	if !ok || len(vs) == 0 || vs[0] == "" {
		return nil, false
	}
	return vs[0], true
}

// normalize checks a single value and returns its coerced form. A nil value
// with a nil error means the optional field is simply absent.
func (f Field) normalize(raw any, present bool) (any, *FieldError) {
	if !present {
		if f.Required {
			return nil, f.fail("%s is required")
		}
		if f.Default != nil {
			return f.Default, nil
		}
		return nil, nil
	}

	switch f.Kind {
	case KindString:
		return f.normalizeString(raw)
	case KindEmail:
		return f.normalizeEmail(raw)
	case KindNumber:
		return f.normalizeNumber(raw)
	case KindInteger:
		return f.normalizeInteger(raw)
	case KindBool:
		return f.normalizeBool(raw)
	case KindObjectID:
		return f.normalizeObjectID(raw)
	case KindDate:
		return f.normalizeDate(raw)
	}
	return nil, f.fail("%s has an unsupported type")
}

func (f Field) fail(format string, args ...any) *FieldError {
	all := append([]any{f.Name}, args...)
	return &FieldError{Path: f.Name, Message: fmt.Sprintf(format, all...)}
}

func (f Field) normalizeString(raw any) (any, *FieldError) {
	s, ok := raw.(string)
	if !ok {
		return nil, f.fail("%s must be a string")
	}
	s = strings.TrimSpace(s)
	if s == "" && f.Required {
		return nil, f.fail("%s is required")
	}
	if f.MinLen > 0 && len(s) < f.MinLen {
		return nil, f.fail("%s must be at least %d characters", f.MinLen)
	}
	if f.MaxLen > 0 && len(s) > f.MaxLen {
		return nil, f.fail("%s must be at most %d characters", f.MaxLen)
	}
	if f.Pattern != nil && !f.Pattern.MatchString(s) {
		return nil, f.fail("%s has an invalid format")
	}
	if len(f.Enum) > 0 {
		for _, e := range f.Enum {
			if s == e {
				return s, nil
			}
		}
		return nil, f.fail("%s must be one of: %s", strings.Join(f.Enum, ", "))
	}
	return s, nil
}

func (f Field) normalizeEmail(raw any) (any, *FieldError) {
	s, ok := raw.(string)
	if !ok {
		return nil, f.fail("%s must be a string")
	}
	s = strings.ToLower(strings.TrimSpace(s))
	if !emailRx.MatchString(s) {
		return nil, f.fail("%s must be a valid email")
	}
	if f.MaxLen > 0 && len(s) > f.MaxLen {
		return nil, f.fail("%s must be at most %d characters", f.MaxLen)
	}
	return s, nil
}

// numberText extracts the textual form of a numeric value so decimal-place
// checks see what the client actually sent. Body JSON is decoded with
// UseNumber, so json.Number is the common case.
func numberText(raw any) (string, bool) {
	switch v := raw.(type) {
	case json.Number:
		return v.String(), true
	case string:
		return strings.TrimSpace(v), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	}
	return "", false
}

func decimalPlaces(text string) int {
	if i := strings.IndexAny(text, "eE"); i >= 0 {
		// Scientific notation: fall back to the shortest decimal form.
		if fv, err := strconv.ParseFloat(text, 64); err == nil {
			text = strconv.FormatFloat(fv, 'f', -1, 64)
		}
	}
	if i := strings.IndexByte(text, '.'); i >= 0 {
		return len(text) - i - 1
	}
	return 0
}

func (f Field) normalizeNumber(raw any) (any, *FieldError) {
	text, ok := numberText(raw)
	if !ok {
		return nil, f.fail("%s must be a number")
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, f.fail("%s must be a valid number")
	}
	if f.MaxDecimals > 0 && decimalPlaces(text) > f.MaxDecimals {
		return nil, f.fail("%s must have at most %d decimal places", f.MaxDecimals)
	}
	if f.Min != nil && v < *f.Min {
		return nil, f.fail("%s must be at least %v", *f.Min)
	}
	if f.Max != nil && v > *f.Max {
		return nil, f.fail("%s must be at most %v", *f.Max)
	}
	return v, nil
}

func (f Field) normalizeInteger(raw any) (any, *FieldError) {
	text, ok := numberText(raw)
	if !ok {
		return nil, f.fail("%s must be an integer")
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, f.fail("%s must be an integer")
	}
	v := int(n)
	if f.Min != nil && float64(v) < *f.Min {
		return nil, f.fail("%s must be at least %v", *f.Min)
	}
	if f.Max != nil && float64(v) > *f.Max {
		return nil, f.fail("%s must be at most %v", *f.Max)
	}
	return v, nil
}

func (f Field) normalizeBool(raw any) (any, *FieldError) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1":
			return true, nil
		case "false", "0":
			return false, nil
		}
	}
	return nil, f.fail("%s must be a boolean")
}

func (f Field) normalizeObjectID(raw any) (any, *FieldError) {
	s, ok := raw.(string)
	if !ok {
		return nil, f.fail("%s must be a string")
	}
	s = strings.TrimSpace(s)
	if !objectIDRx.MatchString(s) {
		return nil, f.fail("%s must be a valid id")
	}
	return s, nil
}

func (f Field) normalizeDate(raw any) (any, *FieldError) {
	s, ok := raw.(string)
	if !ok {
		return nil, f.fail("%s must be a date string")
	}
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return nil, f.fail("%s must be a valid date")
}

// ---- accessors for handlers ----

// Str returns a normalized body string, or "" when absent.
func (r *Request) Str(name string) string {
	if v, ok := r.Body[name].(string); ok {
		return v
	}
	return ""
}

// Has reports whether a body field survived normalization.
func (r *Request) Has(name string) bool {
	_, ok := r.Body[name]
	return ok
}

// Num returns a normalized body number, or 0 when absent.
func (r *Request) Num(name string) float64 {
	if v, ok := r.Body[name].(float64); ok {
		return v
	}
	return 0
}

// Bool returns a normalized body boolean.
func (r *Request) Bool(name string) bool {
	v, _ := r.Body[name].(bool)
	return v
}

// Time returns a normalized body date and whether it was present.
func (r *Request) Time(name string) (time.Time, bool) {
	v, ok := r.Body[name].(time.Time)
	return v, ok
}

// QStr returns a normalized query string value.
func (r *Request) QStr(name string) string {
	if v, ok := r.Query[name].(string); ok {
		return v
	}
	return ""
}

// QInt returns a normalized query integer, or the zero value when absent.
func (r *Request) QInt(name string) int {
	if v, ok := r.Query[name].(int); ok {
		return v
	}
	return 0
}

// QTime returns a normalized query date and whether it was present.
func (r *Request) QTime(name string) (time.Time, bool) {
	v, ok := r.Query[name].(time.Time)
	return v, ok
}

// Param returns a normalized route parameter.
func (r *Request) Param(name string) string { return r.Params[name] }
