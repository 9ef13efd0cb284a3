//go:build jsonv2

package jsonbind_test

import (
	jsonbind "github.com/reoring/jsonbind"
	drv "github.com/reoring/jsonbind/source/jsonv2"
)

func init() {
	jsonbind.SetJSONDriver(drv.Driver())
}
