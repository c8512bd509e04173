package atomics

import "sync/atomic"

// Bool is an atomic boolean, the zero value is false.
type Bool struct {
	value int32
}

// NewBool returns an atomic boolean with the given initial value.
func NewBool(value bool) Bool {
	if value {
		return Bool{value: 1}
	}
	return Bool{}
}

// Get the current value
func (b *Bool) Get() bool {
	return atomic.LoadInt32(&b.value) != 0
}

// Set the value
func (b *Bool) Set(value bool) {
	if value {
		atomic.StoreInt32(&b.value, 1)
	} else {
		atomic.StoreInt32(&b.value, 0)
	}
}

// Swap sets value and returns the old value
func (b *Bool) Swap(value bool) bool {
	if value {
		return atomic.SwapInt32(&b.value, 1) != 0
	}
	return atomic.SwapInt32(&b.value, 0) != 0
}
