package validator

import (
	"fmt"
	"strings"
)

func InList[T comparable](field string, value T, allowedValues []T) Rule {
	return Rule{
		Check: func() bool {
			for _, allowed := range allowedValues {
				if value == allowed {
					return true
				}
			}
			return false
		},
		Error: ValidationError{
			Field:          field,
			Message:        fmt.Sprintf("must be one of: %v", allowedValues),
			TranslationKey: "validation.in_list",
			TranslationValues: map[string]any{
				"field":          field,
				"allowed_values": allowedValues,
			},
		},
	}
}

func NotInList[T comparable](field string, value T, forbiddenValues []T) Rule {
	return Rule{
		Check: func() bool {
			for _, forbidden := range forbiddenValues {
				if value == forbidden {
					return false
				}
			}
			return true
		},
		Error: ValidationError{
			Field:          field,
			Message:        fmt.Sprintf("must not be one of: %v", forbiddenValues),
			TranslationKey: "validation.not_in_list",
			TranslationValues: map[string]any{
				"field":            field,
				"forbidden_values": forbiddenValues,
			},
		},
	}
}

func InListString(field, value string, allowedValues []string) Rule {
	return Rule{
		Check: func() bool {
			for _, allowed := range allowedValues {
				if value == allowed {
					return true
				}
			}
			return false
		},
		Error: ValidationError{
			Field:          field,
			Message:        fmt.Sprintf("must be one of: %s", strings.Join(allowedValues, ", ")),
			TranslationKey: "validation.in_list",
			TranslationValues: map[string]any{
				"field":          field,
				"allowed_values": allowedValues,
			},
		},
	}
}

func NotInListString(field, value string, forbiddenValues []string) Rule {
	return Rule{
		Check: func() bool {
			for _, forbidden := range forbiddenValues {
				if value == forbidden {
					return false
				}
			}
			return true
		},
		Error: ValidationError{
			Field:          field,
			Message:        fmt.Sprintf("must not be one of: %s", strings.Join(forbiddenValues, ", ")),
			TranslationKey: "validation.not_in_list",
			TranslationValues: map[string]any{
				"field":            field,
				"forbidden_values": forbiddenValues,
			},
		},
	}
}
