package tagwire

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"
)

var (
	timeType  = reflect.TypeOf(time.Time{})
	valueType = reflect.TypeOf((*Value)(nil)).Elem()
)

// structPlan lists the exported fields of a struct type with their record
// keys.
type structPlan struct {
	fields []planField
}

type planField struct {
	idx       []int
	name      string
	omitEmpty bool
}

var (
	plansMu sync.RWMutex
	plans   = make(map[reflect.Type]*structPlan)
)

func getPlan(t reflect.Type) *structPlan {
	plansMu.RLock()
	if p, ok := plans[t]; ok {
		plansMu.RUnlock()
		return p
	}
	plansMu.RUnlock()

	plansMu.Lock()
	defer plansMu.Unlock()
	if p, ok := plans[t]; ok {
		return p
	}

	p := &structPlan{}
	for _, sf := range reflect.VisibleFields(t) {
		if sf.PkgPath != "" || sf.Anonymous {
			continue
		}
		name := sf.Name
		var omit bool
		if tag, ok := sf.Tag.Lookup("tagwire"); ok {
			if tag == "-" {
				continue
			}
			parts := strings.Split(tag, ",")
			if parts[0] != "" {
				name = parts[0]
			}
			for _, opt := range parts[1:] {
				if opt == "omitempty" {
					omit = true
				}
			}
		}
		p.fields = append(p.fields, planField{idx: sf.Index, name: name, omitEmpty: omit})
	}
	plans[t] = p
	return p
}

// FromGo converts a Go value into a Value. Structs become objects keyed by
// field name or `tagwire:"name"` tag, maps with string keys become objects,
// other maps become Maps, []byte becomes Bytes and time.Time becomes Date.
// Nil pointers, channels and functions are rejected with ErrInvalidType.
func FromGo(x any) (Value, error) {
	if x == nil {
		return nil, fmt.Errorf("%w: nil", ErrInvalidType)
	}
	return fromReflect(reflect.ValueOf(x))
}

func fromReflect(rv reflect.Value) (Value, error) {
	if rv.Type().Implements(valueType) {
		if rv.Kind() == reflect.Interface && rv.IsNil() {
			return nil, fmt.Errorf("%w: nil", ErrInvalidType)
		}
		return rv.Interface().(Value), nil
	}
	if rv.Type() == timeType {
		return NewDate(rv.Interface().(time.Time)), nil
	}
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil, fmt.Errorf("%w: nil %s", ErrInvalidType, rv.Type())
		}
		return fromReflect(rv.Elem())
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return Float(float64(u)), nil
		}
		return Int(u), nil
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float()), nil
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			b := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(b), rv)
			return Bytes(b), nil
		}
		out := make(Array, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			v, err := fromReflect(rv.Index(i))
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out = append(out, v)
		}
		return out, nil
	case reflect.Map:
		return fromMap(rv)
	case reflect.Struct:
		return fromStruct(rv)
	}
	return nil, fmt.Errorf("%w: %s", ErrInvalidType, rv.Type())
}

func fromMap(rv reflect.Value) (Value, error) {
	if rv.Type().Key().Kind() == reflect.String {
		o := NewObject()
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		for _, k := range keys {
			v, err := fromReflect(rv.MapIndex(k))
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k.String(), err)
			}
			o.Set(k.String(), v)
		}
		return o, nil
	}
	m := NewMap()
	iter := rv.MapRange()
	for iter.Next() {
		k, err := fromReflect(iter.Key())
		if err != nil {
			return nil, err
		}
		v, err := fromReflect(iter.Value())
		if err != nil {
			return nil, err
		}
		m.Set(k, v)
	}
	return m, nil
}

func fromStruct(rv reflect.Value) (Value, error) {
	o := NewObject()
	for _, f := range getPlan(rv.Type()).fields {
		fv, err := rv.FieldByIndexErr(f.idx)
		if err != nil {
			// embedded through a nil pointer
			continue
		}
		if f.omitEmpty && fv.IsZero() {
			continue
		}
		v, err := fromReflect(fv)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.name, err)
		}
		o.Set(f.name, v)
	}
	return o, nil
}

// ToGo converts v into plain Go values: int64, float64, bool, string,
// []byte, time.Time, []any, map[string]any for objects, []any for sets
// and map[string]any or []MapEntryGo for maps depending on whether every
// key is a string.
func ToGo(v Value) any {
	switch x := v.(type) {
	case nil:
		return nil
	case Int:
		return int64(x)
	case Float:
		return float64(x)
	case Bool:
		return bool(x)
	case String:
		return string(x)
	case Bytes:
		return []byte(x)
	case Date:
		return x.Time()
	case Array:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = ToGo(e)
		}
		return out
	case *Set:
		out := make([]any, 0, x.Len())
		for _, m := range x.Members() {
			out = append(out, ToGo(m))
		}
		return out
	case *Map:
		entries := x.Entries()
		if allStringKeys(entries) {
			out := make(map[string]any, len(entries))
			for _, e := range entries {
				out[string(e.Key.(String))] = ToGo(e.Value)
			}
			return out
		}
		out := make([]MapEntryGo, len(entries))
		for i, e := range entries {
			out[i] = MapEntryGo{Key: ToGo(e.Key), Value: ToGo(e.Value)}
		}
		return out
	case *Object:
		out := make(map[string]any, x.Len())
		x.Range(func(k string, e Value) bool {
			out[k] = ToGo(e)
			return true
		})
		return out
	}
	return nil
}

// MapEntryGo is a Map entry whose key cannot become a Go map key.
type MapEntryGo struct {
	Key   any `json:"key" yaml:"key"`
	Value any `json:"value" yaml:"value"`
}

func allStringKeys(entries []MapEntry) bool {
	for _, e := range entries {
		if _, ok := e.Key.(String); !ok {
			return false
		}
	}
	return true
}
