package enumble

import (
	"fmt"
	"reflect"
)

// Enumbled is implemented by host records that carry their own entry
type Enumbled interface {
	Enumble() *Entry
}

// Key is a lookup key. The concrete variants are IDKey, NameKey, StringKey,
// EntryKey and RecordKey; the set is closed.
type Key interface {
	fmt.Stringer
	fingerprint() string
}

// IDKey matches the entry with this id
type IDKey int

func (k IDKey) String() string      { return fmt.Sprint(int(k)) }
func (k IDKey) fingerprint() string { return fmt.Sprintf("id:%d", int(k)) }

// NameKey matches the entry with exactly this name
type NameKey Name

func (k NameKey) String() string      { return string(k) }
func (k NameKey) fingerprint() string { return "name:" + string(k) }

// StringKey matches an integer-looking id, or otherwise a label or name
type StringKey string

func (k StringKey) String() string      { return string(k) }
func (k StringKey) fingerprint() string { return "string:" + string(k) }

// EntryKey matches the registry entry equal to Entry
type EntryKey struct {
	Entry *Entry
}

func (k EntryKey) String() string {
	if k.Entry == nil {
		return "<nil>"
	}
	return k.Entry.String()
}

func (k EntryKey) fingerprint() string { return fmt.Sprintf("entry:%p", k.Entry) }

// RecordKey resolves to the entry its record already carries
type RecordKey struct {
	Record Enumbled
}

func (k RecordKey) String() string {
	if isNilRecord(k.Record) {
		return "<nil>"
	}
	if s, ok := k.Record.(fmt.Stringer); ok {
		return s.String()
	}
	if e := k.Record.Enumble(); e != nil {
		return e.String()
	}
	return fmt.Sprintf("%v", k.Record)
}

func (k RecordKey) fingerprint() string {
	v := reflect.ValueOf(k.Record)
	if v.Kind() == reflect.Pointer {
		return fmt.Sprintf("record:%T:%p", k.Record, k.Record)
	}
	return fmt.Sprintf("record:%T:%#v", k.Record, k.Record)
}

// isNilRecord reports whether rec is nil or a nil pointer behind the
// interface
func isNilRecord(rec Enumbled) bool {
	if rec == nil {
		return true
	}
	v := reflect.ValueOf(rec)
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

// unknownKey holds a value of an unsupported type; it never resolves
type unknownKey struct {
	value any
}

func (k unknownKey) String() string      { return fmt.Sprintf("%v", k.value) }
func (k unknownKey) fingerprint() string { return fmt.Sprintf("unknown:%T:%#v", k.value, k.value) }

// KeyOf converts a loosely typed value into a Key. It returns nil for nil
// input.
func KeyOf(v any) Key {
	switch v := v.(type) {
	case nil:
		return nil
	case RecordKey:
		if isNilRecord(v.Record) {
			return nil
		}
		return v
	case EntryKey:
		if v.Entry == nil {
			return nil
		}
		return v
	case Key:
		return v
	case Name:
		return NameKey(v)
	case string:
		return StringKey(v)
	case *Entry:
		if v == nil {
			return nil
		}
		return EntryKey{Entry: v}
	case Enumbled:
		if isNilRecord(v) {
			return nil
		}
		return RecordKey{Record: v}
	case bool:
		return unknownKey{value: v}
	}

	if n, ok := coerceID(v); ok {
		return IDKey(n)
	}
	return unknownKey{value: v}
}

// Keys flattens nested slices, drops nils and de-duplicates the values,
// keeping the order of first occurrence.
func Keys(values ...any) []Key {
	seen := make(map[string]struct{}, len(values))
	keys := make([]Key, 0, len(values))

	var visit func(v any)
	visit = func(v any) {
		if v == nil {
			return
		}
		if _, isKey := v.(Key); !isKey {
			rv := reflect.ValueOf(v)
			switch rv.Kind() {
			case reflect.Slice, reflect.Array:
				if rv.Type().Elem().Kind() != reflect.Uint8 {
					for i := 0; i < rv.Len(); i++ {
						visit(rv.Index(i).Interface())
					}
					return
				}
			case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Func, reflect.Chan:
				if rv.IsNil() {
					return
				}
			}
		}

		k := KeyOf(v)
		if k == nil {
			return
		}
		fp := k.fingerprint()
		if _, dup := seen[fp]; dup {
			return
		}
		seen[fp] = struct{}{}
		keys = append(keys, k)
	}

	for _, v := range values {
		visit(v)
	}
	return keys
}
