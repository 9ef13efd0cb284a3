package jsonbind

import (
	"io"

	"github.com/go-json-experiment/json/jsontext"
)

// Writer is the output token writer used during generation.
type Writer interface {
	OpenMap() error
	CloseMap() error
	OpenArray() error
	CloseArray() error
	WriteKey(key string) error
	WriteString(v string) error
	WriteInt(v int64) error
	WriteFloat(v float64) error
	WriteBool(v bool) error
	WriteNull() error
	Flush() error
}

// NewJSONWriter returns a Writer encoding to w with jsontext. Options such as
// jsontext.WithIndent are passed through to the encoder.
func NewJSONWriter(w io.Writer, opts ...jsontext.Options) Writer {
	return &jsonWriter{enc: jsontext.NewEncoder(w, opts...)}
}

type jsonWriter struct {
	enc *jsontext.Encoder
}

func (j *jsonWriter) OpenMap() error             { return j.enc.WriteToken(jsontext.BeginObject) }
func (j *jsonWriter) CloseMap() error            { return j.enc.WriteToken(jsontext.EndObject) }
func (j *jsonWriter) OpenArray() error           { return j.enc.WriteToken(jsontext.BeginArray) }
func (j *jsonWriter) CloseArray() error          { return j.enc.WriteToken(jsontext.EndArray) }
func (j *jsonWriter) WriteKey(key string) error  { return j.enc.WriteToken(jsontext.String(key)) }
func (j *jsonWriter) WriteString(v string) error { return j.enc.WriteToken(jsontext.String(v)) }
func (j *jsonWriter) WriteInt(v int64) error     { return j.enc.WriteToken(jsontext.Int(v)) }
func (j *jsonWriter) WriteFloat(v float64) error { return j.enc.WriteToken(jsontext.Float(v)) }
func (j *jsonWriter) WriteBool(v bool) error     { return j.enc.WriteToken(jsontext.Bool(v)) }
func (j *jsonWriter) WriteNull() error           { return j.enc.WriteToken(jsontext.Null) }

// Flush is a no-op: the encoder flushes when the top-level value ends.
func (j *jsonWriter) Flush() error { return nil }
