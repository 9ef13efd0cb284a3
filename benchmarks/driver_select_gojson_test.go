//go:build gojson

package jsonbind_test

import (
	jsonbind "github.com/reoring/jsonbind"
)

func init() {
	jsonbind.UseDefaultJSONDriver()
}
