package atomics

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoolZeroValue(t *testing.T) {
	b := Bool{}
	assert.False(t, b.Get())
}

func TestNewBool(t *testing.T) {
	b := NewBool(false)
	assert.False(t, b.Get())
	b = NewBool(true)
	assert.True(t, b.Get())
}

func TestBoolSet(t *testing.T) {
	b := Bool{}
	b.Set(true)
	assert.True(t, b.Get())
	b.Set(false)
	assert.False(t, b.Get())
}

func TestBoolSwap(t *testing.T) {
	b := Bool{}
	assert.False(t, b.Swap(true))
	assert.True(t, b.Get())
	assert.True(t, b.Swap(false))
	assert.False(t, b.Get())
}

func TestBoolSwapConcurrent(t *testing.T) {
	b := Bool{}
	var m sync.Mutex
	winners := 0

	wg := sync.WaitGroup{}
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !b.Swap(true) {
				m.Lock()
				winners++
				m.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
}
