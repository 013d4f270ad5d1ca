package interchange

import (
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	timeType      = reflect.TypeOf(time.Time{})
	jsonFieldSets sync.Map // reflect.Type -> map[string]reflect.Type
)

// jsonFields maps the JSON names of t's fields to their types.
func jsonFields(t reflect.Type) map[string]reflect.Type {
	if cached, ok := jsonFieldSets.Load(t); ok {
		return cached.(map[string]reflect.Type)
	}
	fields := make(map[string]reflect.Type, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		fields[name] = f.Type
	}
	jsonFieldSets.Store(t, fields)
	return fields
}

// unknownFields walks a decoded JSON tree alongside the Go type it will be
// decoded into and calls report with the path of every object key that type
// has no field for. Keys are visited in sorted order.
func unknownFields(path string, v any, t reflect.Type, report func(path string)) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == timeType {
		return
	}

	switch t.Kind() {
	case reflect.Struct:
		obj, ok := v.(map[string]any)
		if !ok {
			return
		}
		fields := jsonFields(t)
		for _, key := range sortedKeys(obj) {
			child := joinPath(path, key)
			ft, known := fields[key]
			if !known {
				report(child)
				continue
			}
			unknownFields(child, obj[key], ft, report)
		}
	case reflect.Slice, reflect.Array:
		arr, ok := v.([]any)
		if !ok {
			return
		}
		for i, item := range arr {
			unknownFields(path+"["+strconv.Itoa(i)+"]", item, t.Elem(), report)
		}
	case reflect.Map:
		obj, ok := v.(map[string]any)
		if !ok {
			return
		}
		for _, key := range sortedKeys(obj) {
			unknownFields(joinPath(path, key), obj[key], t.Elem(), report)
		}
	}
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
