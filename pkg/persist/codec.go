package persist

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Codec converts store values to and from their stored string form.
type Codec[T any] interface {
	Encode(value T) (string, error)
	Decode(raw string) (T, error)
}

// CodecFuncs adapts a pair of functions to a Codec.
type CodecFuncs[T any] struct {
	EncodeFunc func(T) (string, error)
	DecodeFunc func(string) (T, error)
}

// Encode implements Codec.
func (c CodecFuncs[T]) Encode(value T) (string, error) { return c.EncodeFunc(value) }

// Decode implements Codec.
func (c CodecFuncs[T]) Decode(raw string) (T, error) { return c.DecodeFunc(raw) }

// JSON encodes values with encoding/json. It is the default codec.
func JSON[T any]() Codec[T] {
	return CodecFuncs[T]{
		EncodeFunc: func(v T) (string, error) {
			b, err := json.Marshal(v)
			if err != nil {
				return "", err
			}
			return string(b), nil
		},
		DecodeFunc: func(raw string) (T, error) {
			var v T
			err := json.Unmarshal([]byte(raw), &v)
			return v, err
		},
	}
}

// YAML encodes values as YAML documents.
func YAML[T any]() Codec[T] {
	return CodecFuncs[T]{
		EncodeFunc: func(v T) (string, error) {
			b, err := yaml.Marshal(v)
			if err != nil {
				return "", err
			}
			return string(b), nil
		},
		DecodeFunc: func(raw string) (T, error) {
			var v T
			err := yaml.Unmarshal([]byte(raw), &v)
			return v, err
		},
	}
}

// tomlDoc wraps a value so scalars and slices become a valid TOML document.
type tomlDoc[T any] struct {
	Value T `toml:"value"`
}

// TOML encodes values as a TOML document with a single "value" key.
func TOML[T any]() Codec[T] {
	return CodecFuncs[T]{
		EncodeFunc: func(v T) (string, error) {
			var b strings.Builder
			if err := toml.NewEncoder(&b).Encode(tomlDoc[T]{Value: v}); err != nil {
				return "", err
			}
			return b.String(), nil
		},
		DecodeFunc: func(raw string) (T, error) {
			var doc tomlDoc[T]
			if _, err := toml.Decode(raw, &doc); err != nil {
				return doc.Value, err
			}
			return doc.Value, nil
		},
	}
}

// Text encodes scalars in their plain string form (strings as-is, numbers in
// decimal, booleans as true/false, []string comma separated) and falls back
// to JSON for every other type. It suits URL query and cookie storage.
func Text[T any]() Codec[T] {
	return CodecFuncs[T]{
		EncodeFunc: encodeText[T],
		DecodeFunc: decodeText[T],
	}
}

func encodeText[T any](v T) (string, error) {
	switch val := any(v).(type) {
	case string:
		return val, nil
	case int:
		return strconv.Itoa(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case int32:
		return strconv.FormatInt(int64(val), 10), nil
	case uint:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint64:
		return strconv.FormatUint(val, 10), nil
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(val), 'g', -1, 32), nil
	case bool:
		return strconv.FormatBool(val), nil
	case []string:
		return strings.Join(val, ","), nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}

func decodeText[T any](raw string) (T, error) {
	var zero T
	var out any
	var err error

	switch any(zero).(type) {
	case string:
		out = raw
	case int:
		out, err = strconv.Atoi(raw)
	case int64:
		out, err = strconv.ParseInt(raw, 10, 64)
	case int32:
		var n int64
		n, err = strconv.ParseInt(raw, 10, 32)
		out = int32(n)
	case uint:
		var n uint64
		n, err = strconv.ParseUint(raw, 10, 0)
		out = uint(n)
	case uint64:
		out, err = strconv.ParseUint(raw, 10, 64)
	case float64:
		out, err = strconv.ParseFloat(raw, 64)
	case float32:
		var f float64
		f, err = strconv.ParseFloat(raw, 32)
		out = float32(f)
	case bool:
		out, err = strconv.ParseBool(raw)
	case []string:
		if raw == "" {
			out = []string{}
		} else {
			out = strings.Split(raw, ",")
		}
	default:
		var v T
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return zero, fmt.Errorf("decode %q: %w", raw, err)
		}
		return v, nil
	}

	if err != nil {
		return zero, fmt.Errorf("decode %q: %w", raw, err)
	}
	return out.(T), nil
}
