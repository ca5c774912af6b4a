package candidate

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/mitchellh/mapstructure"
)

var choiceType = reflect.TypeOf(Choice{})

// Decode builds a Profile from loosely typed input such as a decoded JSON
// body or a set of flags. Numbers are accepted for the numeric-as-text
// fields, and absent, null or blank choices stay unselected.
func Decode(input map[string]any) (Profile, error) {
	var profile Profile

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(choiceHook, numberTextHook),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &profile,
	})
	if err != nil {
		return profile, err
	}

	if err := decoder.Decode(input); err != nil {
		return profile, fmt.Errorf("decode candidate profile: %w", err)
	}

	return profile, nil
}

func choiceHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != choiceType {
		return data, nil
	}

	switch v := data.(type) {
	case nil:
		return Choice{}, nil
	case string:
		return Select(v), nil
	case Choice:
		return v, nil
	case float64:
		// JSON numbers, e.g. last_new_job: 1
		return Select(strconv.FormatFloat(v, 'f', -1, 64)), nil
	case int:
		return Select(strconv.Itoa(v)), nil
	default:
		return nil, fmt.Errorf("unsupported choice value of type %s", from)
	}
}

// numberTextHook keeps JSON numbers readable when they land in text fields.
func numberTextHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.String {
		return data, nil
	}
	if v, ok := data.(float64); ok {
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	}
	return data, nil
}
