package validation

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
)

// Custom formats registered with gojsonschema
const (
	FormatEmail   = "submitter-email"
	FormatURI     = "uri"
	FormatISODate = "iso-date"
)

func init() {
	gojsonschema.FormatCheckers.Add(FormatEmail, emailChecker{})
	gojsonschema.FormatCheckers.Add(FormatISODate, isoDateChecker{})
}

// emailChecker accepts bare addresses with a dotted domain.
type emailChecker struct{}

func (emailChecker) IsFormat(input interface{}) bool {
	s, ok := input.(string)
	if !ok {
		return true
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndex(s, "@")
	domain := s[at+1:]
	return strings.Contains(domain, ".") && !strings.HasSuffix(domain, ".")
}

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseISODate(s string) (time.Time, bool) {
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// normalizeISODate rewrites accepted ISO 8601 forms as RFC 3339 so they decode
// into time.Time. Unparseable input is returned unchanged for the format rule
// to reject.
func normalizeISODate(s string) string {
	if t, ok := parseISODate(s); ok {
		return t.UTC().Format(time.RFC3339Nano)
	}
	return s
}

type isoDateChecker struct{}

func (isoDateChecker) IsFormat(input interface{}) bool {
	s, ok := input.(string)
	if !ok {
		return true
	}
	_, ok = parseISODate(s)
	return ok
}

// message renders the message for a violated rule, preferring the field's
// override.
func (f Field) message(rule, item string) string {
	if item == "" {
		if m, ok := f.Messages[rule]; ok {
			return m
		}
	}

	name := f.Name
	if item != "" {
		name = fmt.Sprintf("%s[%s]", f.Name, item)
	}
	quoted := `"` + name + `"`

	switch rule {
	case RuleRequired:
		return quoted + " is required"
	case RuleEmpty:
		return quoted + " is not allowed to be empty"
	case RuleMin:
		return fmt.Sprintf("%s length must be at least %d characters long", quoted, f.MinLength)
	case RuleMax:
		return fmt.Sprintf("%s length must be less than or equal to %d characters long", quoted, f.MaxLength)
	case RuleFormat:
		switch f.Format {
		case FormatEmail:
			return quoted + " must be a valid email"
		case FormatURI:
			return quoted + " must be a valid uri"
		case FormatISODate:
			return quoted + " must be in ISO 8601 date format"
		}
		return quoted + " has an invalid format"
	case RuleEnum:
		if f.MustBeTrue {
			return quoted + " must be [true]"
		}
		return fmt.Sprintf("%s must be one of [%s]", quoted, strings.Join(f.Enum, ", "))
	case RulePositive:
		return quoted + " must be a positive number"
	case RuleMinItems:
		return fmt.Sprintf("%s must contain at least %d items", quoted, f.MinItems)
	case RuleType:
		if item != "" {
			return quoted + " must be a string"
		}
		switch f.Type {
		case Integer:
			return quoted + " must be a number"
		case Boolean:
			return quoted + " must be a boolean"
		case StringList:
			return quoted + " must be an array"
		}
		return quoted + " must be a string"
	}
	return quoted + " is invalid"
}
