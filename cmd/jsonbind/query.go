package main

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	jsonbind "github.com/reoring/jsonbind"
	"github.com/reoring/jsonbind/schemadoc"
)

// pointerQuery is a JSON Pointer resolved against a document: the
// gjson/sjson path addressing it and the canonical path the schema sees.
type pointerQuery struct {
	query     string
	canonical string
}

var pointerUnescaper = strings.NewReplacer("~1", "/", "~0", "~")

// resolvePointer walks data along ptr. A segment addressing an array
// element becomes the array marker in the canonical path; the last segment
// may name a value that does not exist yet.
func resolvePointer(data []byte, ptr string) (pointerQuery, error) {
	if !strings.HasPrefix(ptr, "/") {
		return pointerQuery{}, fmt.Errorf("%q is not a JSON Pointer", ptr)
	}
	var q, canon []string
	cur := gjson.ParseBytes(data)
	segs := strings.Split(ptr[1:], "/")
	for i, seg := range segs {
		key := pointerUnescaper.Replace(seg)
		if cur.IsArray() {
			if key == "" || strings.Trim(key, "0123456789") != "" {
				return pointerQuery{}, fmt.Errorf("%s: %q is not an array index", ptr, key)
			}
			q = append(q, key)
			canon = append(canon, jsonbind.ArrayMarker)
		} else {
			if i < len(segs)-1 && !cur.IsObject() {
				return pointerQuery{}, fmt.Errorf("%s: no object at /%s", ptr, strings.Join(segs[:i], "/"))
			}
			q = append(q, escapeQueryKey(key))
			canon = append(canon, jsonbind.EscapeKey(key))
		}
		cur = cur.Get(q[len(q)-1])
	}
	return pointerQuery{query: strings.Join(q, "."), canonical: "/" + strings.Join(canon, "/")}, nil
}

// escapeQueryKey escapes a key for gjson and sjson paths, where most
// punctuation has a meaning.
func escapeQueryKey(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-', r > 0x7f:
		default:
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// bound reports whether the schema binds a value at the canonical path.
func bound(s *schemadoc.Schema, canonical string) bool {
	sess := jsonbind.NewSession(s.Nodes(), schemadoc.Record{})
	sess.SetPath(canonical).UpdateCallbacks()
	if sess.Current() != nil {
		return true
	}
	hs := sess.HandlerStack()
	return len(hs) > 0 && hs[len(hs)-1] != nil
}
