package domain

// IsEmptyValue reports whether a candidate value counts as empty for
// required-field checks. Empty slices count: a tags field with no entries is
// not filled in.
func IsEmptyValue(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []string:
		return len(v) == 0
	case []any:
		return len(v) == 0
	default:
		return false
	}
}

// ValidateFieldValue applies the field validation policy: a value is invalid
// when the field is required and the value is empty, or when a validation
// rule exists and rejects a non-empty value. Fields without a rule are
// otherwise always valid. Returns ok plus the user-facing message on failure.
func ValidateFieldValue(field TableField, value any) (bool, string) {
	if IsEmptyValue(value) {
		if field.Required {
			label := field.Label
			if label == "" {
				label = field.ID
			}
			return false, label + " is required"
		}
		return true, ""
	}
	if field.Validate != nil && !field.Validate(value) {
		if field.ValidationMessage != "" {
			return false, field.ValidationMessage
		}
		return false, "invalid value"
	}
	return true, ""
}
