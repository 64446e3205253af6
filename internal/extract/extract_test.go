package extract

import (
	"errors"
	"testing"
)

type inner struct {
	Expiration string
}

type outer struct {
	Token   *inner
	private int
}

func TestFromObjMap(t *testing.T) {
	obj := map[string]any{
		"token": map[string]any{"expiration": "10 minutes"},
	}
	got, err := FromObj(obj, "$.token.expiration")
	if err != nil {
		t.Fatalf("FromObj: %v", err)
	}
	if got != "10 minutes" {
		t.Fatalf("got %v, want %q", got, "10 minutes")
	}
}

func TestFromObjStruct(t *testing.T) {
	obj := outer{Token: &inner{Expiration: "1h"}}

	// lowercase segments find the exported field
	got, err := FromObj(obj, "$.token.expiration")
	if err != nil {
		t.Fatalf("FromObj: %v", err)
	}
	if got != "1h" {
		t.Fatalf("got %v, want %q", got, "1h")
	}

	// exact names work too
	if _, err := FromObj(obj, "Token.Expiration"); err != nil {
		t.Fatalf("FromObj exact: %v", err)
	}
}

func TestFromObjTypedMapKeys(t *testing.T) {
	type key string
	obj := map[key]int{"n": 7}
	got, err := FromObj(obj, "$.n")
	if err != nil {
		t.Fatalf("FromObj: %v", err)
	}
	if got != 7 {
		t.Fatalf("got %v, want 7", got)
	}
}

func TestFromObjErrors(t *testing.T) {
	var exErr *Error
	cases := []struct {
		obj  any
		path string
	}{
		{map[string]any{"a": 1}, "$.b"},
		{outer{}, "$.token.expiration"}, // nil pointer mid-path
		{outer{}, "$.private"},          // unexported
		{nil, "$.a"},
		{outer{}, "  "},
		{42, "$.a"},
	}
	for _, tc := range cases {
		_, err := FromObj(tc.obj, tc.path)
		if !errors.As(err, &exErr) {
			t.Errorf("FromObj(%v, %q) err = %v, want *Error", tc.obj, tc.path, err)
		}
	}
}
