package util

import (
	"encoding/json"
	"fmt"
)

const jsonIndent = "    "

// MarshalPretty encodes value as indented JSON terminated by a newline, the
// layout of files written by ruletool.
func MarshalPretty(value interface{}) ([]byte, error) {
	buf, err := json.MarshalIndent(value, "", jsonIndent)
	if err != nil {
		return nil, err
	}
	return append(buf, '\n'), nil
}

// ToJsonPretty is MarshalPretty for display. Encoding errors are rendered
// in place of the value.
func ToJsonPretty(value interface{}) string {
	buf, err := MarshalPretty(value)
	if err != nil {
		return fmt.Sprintf("<failed to marshal to json: %v>", err)
	}
	return string(buf)
}
