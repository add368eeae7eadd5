package models

import (
	"bytes"
	"encoding/json"
	"reflect"
)

// Object is a JSON object payload such as step arguments or route data. Exporters write an
// empty object as an empty array, so [] decodes to an empty Object. Numbers decode as
// json.Number.
type Object map[string]any

func (o *Object) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)

	switch {
	case bytes.Equal(trimmed, []byte("null")):
		*o = nil

		return nil
	case len(trimmed) > 0 && trimmed[0] == '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}

		if len(items) > 0 {
			return &json.UnmarshalTypeError{Value: "array", Type: reflect.TypeFor[Object]()}
		}

		*o = Object{}

		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return err
	}

	*o = m

	return nil
}
