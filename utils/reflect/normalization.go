/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package reflect

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// DefaultMaxUnwrap bounds pointer unwrapping in Normalize.
const DefaultMaxUnwrap = 8

var (
	// ErrReflectNilType is returned when a nil reflect.Type is provided.
	ErrReflectNilType = errors.New("reflect: nil reflect.Type provided")
	// ErrReflectNotConvertible is returned when a value cannot be converted to the requested type.
	ErrReflectNotConvertible = errors.New("reflect: value not convertible")
)

// Normalize unwraps pointer types and returns the pointed-to type.
// Registries key members by the normalized type so that T and *T share registrations.
func Normalize(t reflect.Type) (reflect.Type, error) {
	if t == nil {
		return nil, ErrReflectNilType
	}
	for i := 0; i < DefaultMaxUnwrap && t.Kind() == reflect.Pointer; i++ {
		t = t.Elem()
	}
	return t, nil
}

// Indirect dereferences v until it is not a pointer. It reports false when a nil pointer
// or an invalid value is reached.
func Indirect(v reflect.Value) (reflect.Value, bool) {
	for v.IsValid() && v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		return Indirect(v.Elem())
	}
	return v, v.IsValid()
}

// IsNil reports whether v is nil or a typed nil of a nillable kind.
func IsNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan, reflect.UnsafePointer:
		return rv.IsNil()
	}
	return false
}

// Convert returns v as a value of type t.
//
// Conversion policy:
//   - nil becomes the zero value of t
//   - assignable values are used as-is
//   - numeric, string and other reflect-convertible kinds are converted, except
//     int to string which would produce a rune
//   - strings are parsed into booleans and numbers
func Convert(v any, t reflect.Type) (reflect.Value, error) {
	if t == nil {
		return reflect.Value{}, ErrReflectNilType
	}
	if v == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		if rv.Type() == t {
			return rv, nil
		}
		out := reflect.New(t).Elem()
		out.Set(rv)
		return out, nil
	}
	if t.Kind() != reflect.String || !isInteger(rv.Kind()) {
		if rv.Type().ConvertibleTo(t) && (!isNumeric(t.Kind()) || isNumeric(rv.Kind())) {
			return rv.Convert(t), nil
		}
	}
	if rv.Kind() == reflect.String {
		return parse(rv.String(), t)
	}
	return reflect.Value{}, fmt.Errorf("%w: %v to %v", ErrReflectNotConvertible, rv.Type(), t)
}

// ParseIndex parses the literal text of an indexer segment ("0", "\"key\"", "'key'")
// into a value of type t.
func ParseIndex(text string, t reflect.Type) (reflect.Value, error) {
	text = strings.TrimSpace(text)
	if len(text) >= 2 {
		if (text[0] == '"' && text[len(text)-1] == '"') || (text[0] == '\'' && text[len(text)-1] == '\'') {
			text = text[1 : len(text)-1]
		}
	}
	return parse(text, t)
}

func parse(s string, t reflect.Type) (reflect.Value, error) {
	out := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.String:
		out.SetString(s)
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("%w: %q to %v: %v", ErrReflectNotConvertible, s, t, err)
		}
		out.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("%w: %q to %v: %v", ErrReflectNotConvertible, s, t, err)
		}
		out.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err := strconv.ParseUint(s, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("%w: %q to %v: %v", ErrReflectNotConvertible, s, t, err)
		}
		out.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, t.Bits())
		if err != nil {
			return reflect.Value{}, fmt.Errorf("%w: %q to %v: %v", ErrReflectNotConvertible, s, t, err)
		}
		out.SetFloat(f)
	case reflect.Interface:
		if reflect.TypeOf(s).Implements(t) {
			out.Set(reflect.ValueOf(s))
			break
		}
		fallthrough
	default:
		return reflect.Value{}, fmt.Errorf("%w: %q to %v", ErrReflectNotConvertible, s, t)
	}
	return out, nil
}

func isInteger(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return false
}

func isNumeric(k reflect.Kind) bool {
	return isInteger(k) || k == reflect.Float32 || k == reflect.Float64
}
