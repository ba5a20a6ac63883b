// Package protocol implements the length-prefixed packet framing and the
// field encodings (VarInt, strings, big-endian numerics) shared by every
// packet this server reads or writes.
package protocol

import (
	"bytes"
	"fmt"
	"reflect"
	"sync"
)

const tagName = "mc"

type fieldSpec struct {
	index int
	name  string
	tag   string
}

// layouts caches the tagged fields of each packet struct type.
var layouts sync.Map // reflect.Type → []fieldSpec

func layoutOf(t reflect.Type) []fieldSpec {
	if cached, ok := layouts.Load(t); ok {
		return cached.([]fieldSpec)
	}

	var specs []fieldSpec
	for i := range t.NumField() {
		field := t.Field(i)
		tag := field.Tag.Get(tagName)
		if tag == "" || tag == "-" {
			continue
		}
		specs = append(specs, fieldSpec{index: i, name: field.Name, tag: tag})
	}

	layouts.Store(t, specs)
	return specs
}

// Marshal encodes a Packet struct into bytes using mc struct tags.
func Marshal(p Packet) ([]byte, error) {
	v := reflect.ValueOf(p)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, fmt.Errorf("marshal: expected struct, got %s", v.Kind())
	}

	var buf bytes.Buffer
	for _, f := range layoutOf(v.Type()) {
		if err := WriteField(&buf, f.tag, v.Field(f.index).Interface()); err != nil {
			return nil, fmt.Errorf("marshal field %s: %w", f.name, err)
		}
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes bytes into a Packet struct using mc struct tags.
func Unmarshal(data []byte, p Packet) error {
	v := reflect.ValueOf(p)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return fmt.Errorf("unmarshal: expected non-nil pointer, got %T", p)
	}
	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("unmarshal: expected pointer to struct, got pointer to %s", v.Kind())
	}

	r := bytes.NewReader(data)
	for _, f := range layoutOf(v.Type()) {
		val, err := ReadField(r, f.tag)
		if err != nil {
			return fmt.Errorf("unmarshal field %s: %w", f.name, err)
		}

		fv := v.Field(f.index)
		rv := reflect.ValueOf(val)
		if !rv.Type().AssignableTo(fv.Type()) {
			return fmt.Errorf("unmarshal field %s: cannot assign %s to %s", f.name, rv.Type(), fv.Type())
		}
		fv.Set(rv)
	}

	if r.Len() > 0 {
		return fmt.Errorf("unmarshal %T: %d trailing bytes", p, r.Len())
	}
	return nil
}
