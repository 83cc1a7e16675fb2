package state

import "reflect"

// defaultEquals compares with == for the common comparable kinds.
// Pointers, channels and unsafe pointers compare by identity, so storing a
// new pointer always notifies even when the pointees are equal. Funcs are
// never equal unless both are nil. Slices, maps, arrays and structs fall back
// to reflect.DeepEqual.
func defaultEquals[T any](a, b T) bool {
	switch av := any(a).(type) {
	case int:
		return av == any(b).(int)
	case int8:
		return av == any(b).(int8)
	case int16:
		return av == any(b).(int16)
	case int32:
		return av == any(b).(int32)
	case int64:
		return av == any(b).(int64)
	case uint:
		return av == any(b).(uint)
	case uint8:
		return av == any(b).(uint8)
	case uint16:
		return av == any(b).(uint16)
	case uint32:
		return av == any(b).(uint32)
	case uint64:
		return av == any(b).(uint64)
	case float32:
		return av == any(b).(float32)
	case float64:
		return av == any(b).(float64)
	case string:
		return av == any(b).(string)
	case bool:
		return av == any(b).(bool)
	}

	va, vb := reflect.ValueOf(any(a)), reflect.ValueOf(any(b))
	if !va.IsValid() || !vb.IsValid() {
		return va.IsValid() == vb.IsValid()
	}
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.Chan:
		return va.Pointer() == vb.Pointer()
	case reflect.Func:
		return va.IsNil() && vb.IsNil()
	case reflect.Slice, reflect.Map, reflect.Array, reflect.Struct:
		return reflect.DeepEqual(a, b)
	default:
		return any(a) == any(b)
	}
}

// Never is an equality function that reports every write as a change.
// Use it for signals holding values that are mutated in place.
func Never[T any](a, b T) bool {
	return false
}
