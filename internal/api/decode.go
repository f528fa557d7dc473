package api

import (
	"encoding/json"
	"slices"
	"strings"

	"github.com/vitashop/vitashop/internal/models"
)

// defaultRejection is used when the backend rejects a save without saying why.
const defaultRejection = "Failed to update profile"

// parseFieldErrors extracts field errors from a save rejection body.
//
// The "errors" object is authoritative. A string "detail" or "message" is a
// fallback surfaced as a single general entry. An object-valued "detail" is
// read as field errors, as are field names at the top level. It reports
// false when the body is not JSON.
func parseFieldErrors(body []byte) (models.ErrorSet, bool) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, false
	}

	if raw, ok := envelope["errors"]; ok {
		if fields := decodeFieldMap(raw); len(fields) > 0 {
			return fields, true
		}
		if msg := decodeMessage(raw); msg != "" {
			return models.ErrorSet{models.FieldGeneral: msg}, true
		}
	}

	if raw, ok := envelope["detail"]; ok {
		if msg := decodeMessage(raw); msg != "" {
			return models.ErrorSet{models.FieldGeneral: msg}, true
		}
		if fields := decodeFieldMap(raw); len(fields) > 0 {
			return fields, true
		}
	}

	if raw, ok := envelope["message"]; ok {
		if msg := decodeMessage(raw); msg != "" {
			return models.ErrorSet{models.FieldGeneral: msg}, true
		}
	}

	if fields := topLevelFields(envelope); len(fields) > 0 {
		return fields, true
	}

	return models.ErrorSet{models.FieldGeneral: defaultRejection}, true
}

// topLevelFields reads serializer-style bodies that key errors by field
// name at the top level. Only editable fields and non_field_errors count.
func topLevelFields(envelope map[string]json.RawMessage) models.ErrorSet {
	fields := models.ErrorSet{}
	for key, value := range envelope {
		name := models.Field(key)
		if key == "non_field_errors" {
			name = models.FieldGeneral
		} else if !slices.Contains(models.EditableFields, name) {
			continue
		}
		if msg := decodeMessage(value); msg != "" {
			fields[name] = msg
		}
	}
	return fields
}

// decodeFieldMap reads {"field": "msg"} or {"field": ["msg", ...]}. The
// first message of a list is kept. Keys the form has no place for are
// folded into the general entry.
func decodeFieldMap(raw json.RawMessage) models.ErrorSet {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}

	fields := models.ErrorSet{}
	for key, value := range m {
		if msg := decodeMessage(value); msg != "" {
			name := models.Field(key)
			if key == "non_field_errors" {
				name = models.FieldGeneral
			}
			fields[name] = msg
		}
	}
	return fields.Displayable()
}

// decodeMessage reads a string or the first string of a list.
func decodeMessage(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		for _, item := range list {
			if item = strings.TrimSpace(item); item != "" {
				return item
			}
		}
	}

	return ""
}

// parseMessage extracts a human-readable message from an error body.
func parseMessage(body []byte) string {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}

	for _, key := range []string{"message", "detail", "error"} {
		if raw, ok := envelope[key]; ok {
			if msg := decodeMessage(raw); msg != "" {
				return msg
			}
		}
	}

	return ""
}
