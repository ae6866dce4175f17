// Package rules holds the declarative field constraints of resource requests.
package rules

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/onerilhan/resource-booking-api/internal/apperrors"
	"github.com/onerilhan/resource-booking-api/internal/config"
	"github.com/onerilhan/resource-booking-api/internal/models"
)

// Request field names as posted by the form
const (
	FieldName        = "resourceName"
	FieldDescription = "resourceDescription"
	FieldAvailable   = "resourceAvailable"
	FieldPrice       = "resourcePrice"
	FieldPriceUnit   = "resourcePriceUnit"
)

var (
	nameCharsPattern = regexp.MustCompile(`^[a-zA-Z0-9äöåÄÖÅ ,.\-]+$`)
	textCharsPattern = regexp.MustCompile(`^[a-zA-Z0-9äöåÄÖÅ ,.\-/]+$`)
)

type valueKind int

const (
	kindString valueKind = iota
	kindBool
	kindNumber
)

// check is one validator tag and the message reported when it fails
type check struct {
	tag     string
	message string
}

type fieldRule struct {
	field  string
	kind   valueKind
	checks []check
}

// RuleSet validates a raw request body field by field. Each field stops at
// its first failing check; all fields are always evaluated.
type RuleSet struct {
	validate *validator.Validate
	fields   []fieldRule
	units    []string
}

// PriceUnits returns the units allowed by policy
func PriceUnits(policy string) []string {
	if policy == config.PriceUnitPolicyBasic {
		return []string{models.PriceUnitHour, models.PriceUnitDay}
	}
	return []string{models.PriceUnitHour, models.PriceUnitDay, models.PriceUnitWeek, models.PriceUnitMonth}
}

// NewResourceRules builds the rule set for the given price unit policy
func NewResourceRules(policy string) *RuleSet {
	v := validator.New()
	mustRegister(v, "resource_name_chars", func(fl validator.FieldLevel) bool {
		return nameCharsPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "resource_text_chars", func(fl validator.FieldLevel) bool {
		return textCharsPattern.MatchString(fl.Field().String())
	})

	units := PriceUnits(policy)

	return &RuleSet{
		validate: v,
		units:    units,
		fields: []fieldRule{
			{
				field: FieldName,
				kind:  kindString,
				checks: []check{
					{"resource_name_chars", FieldName + " can only contain letters, numbers, spaces and symbols ,.-"},
					{"min=5,max=30", FieldName + " must be 5-30 characters"},
				},
			},
			{
				field: FieldDescription,
				kind:  kindString,
				checks: []check{
					{"resource_text_chars", FieldDescription + " can only contain letters, numbers, spaces and symbols ,.-/"},
					{"min=10,max=50", FieldDescription + " must be 10-50 characters"},
				},
			},
			{
				field: FieldAvailable,
				kind:  kindBool,
			},
			{
				field: FieldPrice,
				kind:  kindNumber,
				checks: []check{
					{"gte=0", FieldPrice + " must be a non-negative number"},
				},
			},
			{
				field: FieldPriceUnit,
				kind:  kindString,
				checks: []check{
					{"oneof=" + strings.Join(units, " "), FieldPriceUnit + " must be " + quoteList(units)},
				},
			},
		},
	}
}

// mustRegister panics when a custom tag cannot be registered; without it
// every check using the tag would fail
func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("rules: register %q: %v", tag, err))
	}
}

// Validate returns the normalized input, or the ordered list of field errors
func (s *RuleSet) Validate(body map[string]interface{}) (*models.ResourceInput, []apperrors.FieldError) {
	var errs []apperrors.FieldError
	values := make(map[string]interface{}, len(s.fields))

	for _, rule := range s.fields {
		raw, present := body[rule.field]
		value, msg := s.evaluate(rule, raw, present)
		if msg != "" {
			errs = append(errs, apperrors.FieldError{Field: rule.field, Msg: msg})
			continue
		}
		values[rule.field] = value
	}

	if len(errs) > 0 {
		return nil, errs
	}

	return &models.ResourceInput{
		Name:        values[FieldName].(string),
		Description: values[FieldDescription].(string),
		Available:   values[FieldAvailable].(bool),
		Price:       values[FieldPrice].(float64),
		PriceUnit:   values[FieldPriceUnit].(string),
	}, nil
}

// evaluate coerces one field and runs its checks. A non-empty message means
// the field failed.
func (s *RuleSet) evaluate(rule fieldRule, raw interface{}, present bool) (interface{}, string) {
	var value interface{}

	switch rule.kind {
	case kindString:
		if !present || raw == nil {
			return nil, rule.field + " is required"
		}
		str, ok := raw.(string)
		if !ok {
			return nil, rule.field + " must be a string"
		}
		str = strings.TrimSpace(str)
		if str == "" {
			return nil, rule.field + " is required"
		}
		value = str

	case kindBool:
		if !present {
			return nil, rule.field + " is required"
		}
		b, ok := coerceBool(raw)
		if !ok {
			return nil, rule.field + " must be boolean"
		}
		value = b

	case kindNumber:
		if !present {
			return nil, rule.field + " is required"
		}
		n, ok := coerceNumber(raw)
		if !ok {
			return nil, rule.checks[0].message
		}
		value = n
	}

	for _, c := range rule.checks {
		if err := s.validate.Var(value, c.tag); err != nil {
			return nil, c.message
		}
	}

	return value, ""
}

// coerceBool accepts JSON booleans, "true"/"false"/"1"/"0" and the numbers 0 and 1
func coerceBool(raw interface{}) (bool, bool) {
	switch v := raw.(type) {
	case bool:
		return v, true
	case string:
		switch strings.TrimSpace(v) {
		case "true", "1":
			return true, true
		case "false", "0":
			return false, true
		}
	case float64:
		if v == 1 {
			return true, true
		}
		if v == 0 {
			return false, true
		}
	}
	return false, false
}

// coerceNumber accepts finite JSON numbers and numeric strings
func coerceNumber(raw interface{}) (float64, bool) {
	var n float64
	switch v := raw.(type) {
	case float64:
		n = v
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0, false
		}
		n = parsed
	default:
		return 0, false
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// quoteList renders 'a', 'b', or 'c'
func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = fmt.Sprintf("'%s'", item)
	}
	switch len(quoted) {
	case 0:
		return ""
	case 1:
		return quoted[0]
	case 2:
		return quoted[0] + " or " + quoted[1]
	default:
		return strings.Join(quoted[:len(quoted)-1], ", ") + ", or " + quoted[len(quoted)-1]
	}
}
