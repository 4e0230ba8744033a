package model

import "encoding/json"

// NullString is a JSON request field that tells three states apart: absent
// (Set false), explicit null (Set true, Value nil) and a string value.
type NullString struct {
	Set   bool
	Value *string
}

// StringValue returns a set, non-null NullString.
func StringValue(s string) NullString {
	return NullString{Set: true, Value: &s}
}

// UnmarshalJSON is only called when the key is present, null included.
func (n *NullString) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	n.Value = &s
	return nil
}
