package jsonfix

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/buger/jsonparser"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ErrInvalidJSON is returned by Parse for text that is not strict JSON.
var ErrInvalidJSON = errors.New("invalid JSON")

// Object is a decoded JSON object with its source key order.
type Object = orderedmap.OrderedMap[string, any]

// Parse strictly decodes JSON text. Objects become *Object so that key order
// survives re-serialization; numbers become float64.
func Parse(text string) (any, error) {
	data := []byte(text)
	if !json.Valid(data) {
		return nil, ErrInvalidJSON
	}
	value, dataType, _, err := jsonparser.Get(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return decodeValue(value, dataType)
}

func decodeValue(data []byte, dataType jsonparser.ValueType) (any, error) {
	switch dataType {
	case jsonparser.String:
		return jsonparser.ParseString(data)
	case jsonparser.Number:
		return jsonparser.ParseFloat(data)
	case jsonparser.Boolean:
		return jsonparser.ParseBoolean(data)
	case jsonparser.Null:
		return nil, nil
	case jsonparser.Array:
		return decodeArray(data)
	case jsonparser.Object:
		return decodeObject(data)
	default:
		return nil, fmt.Errorf("%w: unexpected value %q", ErrInvalidJSON, data)
	}
}

func decodeArray(data []byte) ([]any, error) {
	out := []any{}
	var firstErr error
	_, err := jsonparser.ArrayEach(data, func(value []byte, dataType jsonparser.ValueType, _ int, err error) {
		if firstErr != nil {
			return
		}
		if err != nil {
			firstErr = err
			return
		}
		v, err := decodeValue(value, dataType)
		if err != nil {
			firstErr = err
			return
		}
		out = append(out, v)
	})
	if err != nil {
		return nil, err
	}
	return out, firstErr
}

func decodeObject(data []byte) (*Object, error) {
	obj := orderedmap.New[string, any]()
	err := jsonparser.ObjectEach(data, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		v, err := decodeValue(value, dataType)
		if err != nil {
			return err
		}
		// ObjectEach hands over keys already unescaped.
		obj.Set(string(key), v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return obj, nil
}
