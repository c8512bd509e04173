package atomics

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOnceDoTwice(t *testing.T) {
	var once Once
	count := 0
	assert.True(t, once.Do(func() { count++ }))
	assert.False(t, once.Do(func() { count++ }))
	once.Wait()
	assert.Equal(t, 1, count)
}

func TestOnceDoNil(t *testing.T) {
	var once Once
	assert.False(t, once.IsDone())
	assert.True(t, once.Do(nil))
	assert.True(t, once.IsDone())
}

func TestOnceDoneChannel(t *testing.T) {
	var once Once

	select {
	case <-once.Done():
		t.Fatal("Done() should not be closed before Do()")
	default:
	}

	once.Do(nil)

	select {
	case <-once.Done():
	default:
		t.Fatal("Done() should be closed after Do()")
	}
}

func TestOnceDoneAfterDo(t *testing.T) {
	// Done() called for the first time after Do() must be closed upfront
	var once Once
	once.Do(nil)
	select {
	case <-once.Done():
	default:
		t.Fatal("Done() should be closed")
	}
}

func TestOnceDoConcurrent(t *testing.T) {
	var once Once
	var m sync.Mutex
	count := 0
	winners := 0

	wg := sync.WaitGroup{}
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result := once.Do(func() {
				m.Lock()
				count++
				m.Unlock()
			})
			if result {
				m.Lock()
				winners++
				m.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, count)
	assert.Equal(t, 1, winners)
}

func TestOnceNestedDo(t *testing.T) {
	var once Once
	count := 0
	once.Do(func() {
		count++
		once.Do(func() {
			count++
			panic("this shouldn't happen")
		})
	})
	assert.Equal(t, 1, count)
}
