// Package extract resolves dotted attribute paths against arbitrary values.
//
// Paths follow the "$.a.b.c" convention (the "$." prefix is optional). Each
// segment is looked up as a map key first, then as a struct field. Struct
// lookup accepts the exact segment or its exported (upper-cased first rune)
// form, so "$.token.expiration" finds the Expiration field of a Token struct.
package extract

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"
)

// Error reports a path segment that could not be resolved.
type Error struct {
	Path string
}

func (e *Error) Error() string {
	return fmt.Sprintf("unable to extract attribute %q", e.Path)
}

// FromObj walks path through obj and returns the addressed value.
// A missing segment yields *Error.
func FromObj(obj any, path string) (any, error) {
	trimmed := normalize(path)
	if trimmed == "" {
		return nil, &Error{Path: path}
	}

	current := obj
	for _, segment := range strings.Split(trimmed, ".") {
		next, ok := lookup(current, segment)
		if !ok {
			return nil, &Error{Path: trimmed}
		}
		current = next
	}
	return current, nil
}

func normalize(path string) string {
	return strings.TrimLeft(strings.TrimSpace(path), "$.")
}

func lookup(obj any, segment string) (any, bool) {
	if obj == nil {
		return nil, false
	}

	// fast path for the common shape
	if m, ok := obj.(map[string]any); ok {
		v, ok := m[segment]
		return v, ok
	}

	rv := reflect.ValueOf(obj)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		v := rv.MapIndex(reflect.ValueOf(segment).Convert(rv.Type().Key()))
		if !v.IsValid() {
			return nil, false
		}
		return v.Interface(), true
	case reflect.Struct:
		f := rv.FieldByName(segment)
		if !f.IsValid() {
			f = rv.FieldByName(exported(segment))
		}
		if !f.IsValid() || !f.CanInterface() {
			return nil, false
		}
		return f.Interface(), true
	default:
		return nil, false
	}
}

func exported(name string) string {
	if name == "" {
		return name
	}
	r := []rune(name)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
