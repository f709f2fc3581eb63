package provider

import (
	"bytes"
	"encoding/json"
)

// Document is the raw resource owner response.
type Document []byte

func (d Document) Decode(v any) error {
	return json.Unmarshal(d, v)
}

// FlexString accepts a JSON string or number. Anything else decodes to
// the empty string.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*s = ""
		return nil
	}
	switch data[0] {
	case '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			*s = ""
			return nil
		}
		*s = FlexString(v)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			*s = ""
			return nil
		}
		*s = FlexString(n.String())
	default:
		*s = ""
	}
	return nil
}

// FlexBool is true for JSON true or the string "true". Every other value,
// including malformed ones, decodes to false.
type FlexBool bool

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*b = false
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case 't':
		*b = string(data) == "true"
	case '"':
		var v string
		if err := json.Unmarshal(data, &v); err == nil {
			*b = v == "true"
		}
	}
	return nil
}
