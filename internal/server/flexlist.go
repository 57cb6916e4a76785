package server

import (
	"bytes"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// FlexList is a request field that clients send either as a single string or
// as an array of strings. A lone string becomes a one-element list; an empty
// string or null becomes an empty list.
type FlexList []string

// UnmarshalJSON accepts a JSON string or a JSON array of strings.
func (l *FlexList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = FlexList{}
		return nil
	}

	if data[0] == '"' {
		var single string
		if err := json.Unmarshal(data, &single); err != nil {
			return err
		}
		if strings.TrimSpace(single) == "" {
			*l = FlexList{}
			return nil
		}
		*l = FlexList{single}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	if many == nil {
		many = []string{}
	}
	*l = FlexList(many)
	return nil
}

// Strings returns the list as a plain slice.
func (l FlexList) Strings() []string {
	if l == nil {
		return nil
	}
	return []string(l)
}
