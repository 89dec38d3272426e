package validation

import (
	"fmt"

	"github.com/hexsyn/intake/internal/model"
)

var applicationFields = []Field{
	{Name: "firstName", Required: true, MinLength: 1, MaxLength: 50, Messages: map[string]string{
		RuleEmpty: "First name is required", RuleRequired: "First name is required",
		RuleMax: "First name cannot be longer than 50 characters",
	}},
	{Name: "lastName", Required: true, MinLength: 1, MaxLength: 50, Messages: map[string]string{
		RuleEmpty: "Last name is required", RuleRequired: "Last name is required",
		RuleMax: "Last name cannot be longer than 50 characters",
	}},
	{Name: "email", Required: true, Format: FormatEmail, Messages: map[string]string{
		RuleFormat: "Please enter a valid email address", RuleEmpty: "Email is required",
		RuleRequired: "Email is required",
	}},
	{Name: "phone", Required: true, MinLength: 10, MaxLength: 20, Messages: map[string]string{
		RuleEmpty: "Phone number is required", RuleRequired: "Phone number is required",
		RuleMin: "Phone number must be at least 10 characters",
		RuleMax: "Phone number cannot be longer than 20 characters",
	}},
	{Name: "university", Required: true, MinLength: 1, MaxLength: 100, Messages: map[string]string{
		RuleEmpty: "University name is required", RuleRequired: "University name is required",
	}},
	{Name: "major", Required: true, MinLength: 1, MaxLength: 100, Messages: map[string]string{
		RuleEmpty: "Major is required", RuleRequired: "Major is required",
	}},
	{Name: "graduationYear", Required: true, Messages: map[string]string{
		RuleEmpty: "Graduation year is required", RuleRequired: "Graduation year is required",
	}},
	{Name: "gpa"},
	{Name: "coverLetter"},
	{Name: "linkedin", Format: FormatURI},
	{Name: "portfolio", Format: FormatURI},
	{Name: "availability"},
	{Name: "duration"},
	{Name: "opportunityId", Type: Integer, Required: true, Positive: true, Messages: map[string]string{
		RuleType: "Opportunity ID must be a number", RulePositive: "Opportunity ID must be a positive number",
		RuleRequired: "Opportunity ID is required",
	}},
	{Name: "opportunityTitle", Required: true, MinLength: 1, MaxLength: 100, Messages: map[string]string{
		RuleEmpty: "Opportunity title is required", RuleRequired: "Opportunity title is required",
	}},
	{Name: "opportunityCompany", Required: true, MinLength: 1, MaxLength: 100, Messages: map[string]string{
		RuleEmpty: "Company name is required", RuleRequired: "Company name is required",
	}},
	{Name: "transactionId"},
	{Name: "paymentDone", Type: Boolean, Default: false},
	{Name: "paymentAmount"},
	{Name: "ownerEmail", Required: true, Format: FormatEmail, Messages: map[string]string{
		RuleFormat: "Please enter a valid owner email", RuleEmpty: "Owner email is required",
		RuleRequired: "Owner email is required",
	}},
}

var careerFields = []Field{
	{Name: "firstName", Required: true, MinLength: 1, MaxLength: 50},
	{Name: "lastName", Required: true, MinLength: 1, MaxLength: 50},
	{Name: "email", Required: true, Format: FormatEmail},
	{Name: "phone", Required: true, MinLength: 10, MaxLength: 20},
	{Name: "location", MaxLength: 100},
	{Name: "experience", Enum: []string{"entry", "mid", "senior", "executive"}},
	{Name: "availability", Enum: []string{"immediate", "2weeks", "1month", "2months", "3months"}},
	{Name: "salary"},
	{Name: "coverLetter"},
	{Name: "portfolio", Format: FormatURI},
	{Name: "linkedin", Format: FormatURI},
	{Name: "github", Format: FormatURI},
	{Name: "agreeToTerms", Type: Boolean, Required: true, MustBeTrue: true},
	{Name: "allowContact", Type: Boolean, Default: false},
	{Name: "jobId", Type: Integer, Required: true, Positive: true},
	{Name: "jobTitle", MaxLength: 100},
	{Name: "department", MaxLength: 100},
}

var contactFields = []Field{
	{Name: "firstName", Required: true, MinLength: 1, MaxLength: 50},
	{Name: "lastName", Required: true, MinLength: 1, MaxLength: 50},
	{Name: "email", Required: true, Format: FormatEmail},
	{Name: "phone", MinLength: 10, MaxLength: 20},
	{Name: "company", MaxLength: 100},
	{Name: "subject", Required: true, MinLength: 1, MaxLength: 200},
	{Name: "message", Required: true, MinLength: 10, MaxLength: 2000},
	{Name: "inquiryType", Required: true, Enum: []string{"general", "internship", "partnership", "support", "careers", "media"}},
}

var subscriptionFields = []Field{
	{Name: "email", Required: true, Format: FormatEmail},
	{Name: "subscriptionType", Required: true, Enum: []string{"platform_updates", "newsletter", "opportunities", "announcements"}},
	{Name: "source", Required: true, MinLength: 1, MaxLength: 100},
	{Name: "timestamp", Format: FormatISODate},
	{Name: "interests", Type: StringList, Required: true, MinItems: 1,
		Enum: []string{"platform_launch", "new_features", "opportunities", "partnerships", "events", "updates"}},
}

// Validator validates raw submissions of every kind
type Validator struct {
	schemas map[model.Kind]func(map[string]any) (model.Form, FieldErrors)
}

// New compiles the schema of every submission kind
func New() (*Validator, error) {
	v := &Validator{schemas: make(map[model.Kind]func(map[string]any) (model.Form, FieldErrors))}

	if err := register[model.Application](v, model.KindApplication, applicationFields); err != nil {
		return nil, err
	}
	if err := register[model.CareerApplication](v, model.KindCareerApplication, careerFields); err != nil {
		return nil, err
	}
	if err := register[model.Contact](v, model.KindContact, contactFields); err != nil {
		return nil, err
	}
	if err := register[model.Subscription](v, model.KindSubscription, subscriptionFields); err != nil {
		return nil, err
	}
	return v, nil
}

func register[T any, PT interface {
	*T
	model.Form
}](v *Validator, kind model.Kind, fields []Field) error {
	schema, err := NewSchema[T](fields)
	if err != nil {
		return fmt.Errorf("%s schema: %w", kind, err)
	}
	v.schemas[kind] = func(raw map[string]any) (model.Form, FieldErrors) {
		form, errs := schema.Validate(raw)
		if errs != nil {
			return nil, errs
		}
		return PT(form), nil
	}
	return nil
}

// Validate checks raw against the rules of kind. On failure the returned
// error is a FieldErrors listing every violation.
func (v *Validator) Validate(kind model.Kind, raw map[string]any) (model.Form, error) {
	validate, ok := v.schemas[kind]
	if !ok {
		return nil, fmt.Errorf("no schema for kind %q", kind)
	}
	form, errs := validate(raw)
	if len(errs) > 0 {
		return nil, errs
	}
	return form, nil
}
