package stash

import (
	"fmt"
	"reflect"

	"github.com/zoobzio/sentinel"
)

// fieldMeta is the minimal field-path information the default struct
// reducer needs: enough to read a field for encoding and to write it
// back for decoding.
type fieldMeta struct {
	Name  string
	Index []int
}

// scanStructFields reflects directly over t's exported fields. It backs
// the lazy, runtime-discovered path (a struct type encountered mid-dump
// with no prior registration), where only a reflect.Type is available —
// sentinel.Scan[T]() requires a compile-time type parameter and cannot be
// called from one.
func scanStructFields(t reflect.Type) ([]fieldMeta, error) {
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("stash: %s is not a struct", t)
	}
	fields := make([]fieldMeta, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		fields = append(fields, fieldMeta{Name: sf.Name, Index: sf.Index})
	}
	return fields, nil
}

// fieldsFromSentinel adapts a sentinel.Metadata scan (the statically
// typed path, via RegisterStruct[T]) to the same shape scanStructFields
// produces, so both paths share one constructor/reducer builder.
func fieldsFromSentinel(spec sentinel.Metadata) []fieldMeta {
	fields := make([]fieldMeta, 0, len(spec.Fields))
	for _, f := range spec.Fields {
		fields = append(fields, fieldMeta{Name: f.Name, Index: f.Index})
	}
	return fields
}
