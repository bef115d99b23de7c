package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// FlexString decodes any JSON scalar into its text form: numbers keep their
// literal digits, null becomes "", and objects or arrays are kept as compact
// JSON. Provider payloads are not consistent about nutrient types.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(strings.TrimSpace(s))
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, data); err != nil {
			return err
		}
		*f = FlexString(buf.String())
	default:
		*f = FlexString(data)
	}
	return nil
}

func (f FlexString) String() string {
	return string(f)
}

// StringList accepts an array of scalars, a single newline-separated string,
// or null. Blank entries are dropped and the result is never nil.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	out := StringList{}
	switch {
	case len(data) == 0 || string(data) == "null":
	case data[0] == '[':
		var items []FlexString
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("decoding list: %w", err)
		}
		for _, it := range items {
			if s := strings.TrimSpace(string(it)); s != "" {
				out = append(out, s)
			}
		}
	default:
		var s FlexString
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decoding list: %w", err)
		}
		out = append(out, splitLines(string(s))...)
	}
	*l = out
	return nil
}

func splitLines(s string) []string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
