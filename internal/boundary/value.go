// Package boundary converts documents supplied by a host (bytes on the wire,
// files, or Go values) into the JSON value model the validator works on, and
// carries validation results back as JSON.
//
// The value model is: nil, bool, json.Number, string, []any and
// map[string]any. Numbers are always json.Number so that integers of any size
// keep their exact value.
package boundary

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/antoniopresto/wasm-validator/internal/validator"
)

// MaxDepth bounds how deeply values may nest.
const MaxDepth = 10000

// Normalize converts a host value into the value model. Values already in
// the model are copied. Failures are reported as a *DeserializationError
// for subject.
func Normalize(subject Subject, v any) (any, error) {
	n := normalizer{}
	out, err := n.value(v, nil)
	if err != nil {
		return nil, &DeserializationError{Subject: subject, Err: err}
	}
	return out, nil
}

type normalizer struct{}

//nolint:gocyclo,cyclop // one case per host type
func (n normalizer) value(v any, path []string) (any, error) {
	if len(path) > MaxDepth {
		return nil, &MaxDepthError{Path: validator.Pointer(path)}
	}

	switch v := v.(type) {
	case nil:
		return nil, nil
	case bool, string:
		return v, nil
	case json.Number:
		if !isNumber(string(v)) {
			return nil, &InvalidNumberError{Path: validator.Pointer(path), Value: string(v)}
		}
		return v, nil
	case float64:
		return n.float(v, 64, path)
	case float32:
		return n.float(float64(v), 32, path)
	case int:
		return json.Number(strconv.FormatInt(int64(v), 10)), nil
	case int8:
		return json.Number(strconv.FormatInt(int64(v), 10)), nil
	case int16:
		return json.Number(strconv.FormatInt(int64(v), 10)), nil
	case int32:
		return json.Number(strconv.FormatInt(int64(v), 10)), nil
	case int64:
		return json.Number(strconv.FormatInt(v, 10)), nil
	case uint:
		return json.Number(strconv.FormatUint(uint64(v), 10)), nil
	case uint8:
		return json.Number(strconv.FormatUint(uint64(v), 10)), nil
	case uint16:
		return json.Number(strconv.FormatUint(uint64(v), 10)), nil
	case uint32:
		return json.Number(strconv.FormatUint(uint64(v), 10)), nil
	case uint64:
		return json.Number(strconv.FormatUint(v, 10)), nil
	case time.Time:
		return v.Format(time.RFC3339Nano), nil
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			nv, err := n.value(item, append(path, strconv.Itoa(i)))
			if err != nil {
				return nil, err
			}
			out[i] = nv
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			nv, err := n.value(item, append(path, k))
			if err != nil {
				return nil, err
			}
			out[k] = nv
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			key, ok := k.(string)
			if !ok {
				return nil, &NonStringKeyError{Path: validator.Pointer(path), Key: fmt.Sprintf("%v (%T)", k, k)}
			}
			nv, err := n.value(item, append(path, key))
			if err != nil {
				return nil, err
			}
			out[key] = nv
		}
		return out, nil
	case json.Marshaler:
		return n.roundTrip(v, path)
	}
	return n.reflected(reflect.ValueOf(v), path)
}

func (n normalizer) float(f float64, bits int, path []string) (any, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, &NonFiniteNumberError{Path: validator.Pointer(path), Value: f}
	}
	return json.Number(strconv.FormatFloat(f, 'g', -1, bits)), nil
}

// reflected handles typed containers and structs.
func (n normalizer) reflected(rv reflect.Value, path []string) (any, error) {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil, nil
		}
		return n.value(rv.Elem().Interface(), path)
	case reflect.Slice:
		if rv.IsNil() {
			return nil, nil
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return n.roundTrip(rv.Interface(), path)
		}
		fallthrough
	case reflect.Array:
		out := make([]any, rv.Len())
		for i := range rv.Len() {
			nv, err := n.value(rv.Index(i).Interface(), append(path, strconv.Itoa(i)))
			if err != nil {
				return nil, err
			}
			out[i] = nv
		}
		return out, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, &NonStringKeyError{Path: validator.Pointer(path), Key: rv.Type().Key().String()}
		}
		if rv.IsNil() {
			return nil, nil
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			key := iter.Key().String()
			nv, err := n.value(iter.Value().Interface(), append(path, key))
			if err != nil {
				return nil, err
			}
			out[key] = nv
		}
		return out, nil
	case reflect.Struct:
		return n.roundTrip(rv.Interface(), path)
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.String:
		return rv.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return json.Number(strconv.FormatInt(rv.Int(), 10)), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return json.Number(strconv.FormatUint(rv.Uint(), 10)), nil
	case reflect.Float32:
		return n.float(rv.Float(), 32, path)
	case reflect.Float64:
		return n.float(rv.Float(), 64, path)
	}
	return nil, &UnsupportedValueError{Path: validator.Pointer(path), Type: rv.Type().String()}
}

// roundTrip encodes v with its JSON marshalling rules and decodes the result.
func (n normalizer) roundTrip(v any, path []string) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding value of type %T at %q: %w", v, validator.Pointer(path), err)
	}
	return decodeJSON(data)
}

// isNumber reports whether s is a JSON number literal.
func isNumber(s string) bool {
	if s == "" {
		return false
	}
	if s[0] != '-' && (s[0] < '0' || s[0] > '9') {
		return false
	}
	return json.Valid([]byte(s))
}
