package atomics

import "sync"

// Once is similar to sync.Once except that once.Do() returns true, if this
// was the first call to once.Do(). Additionally, once.Done() exposes a channel
// that is closed when once.Do() have been called, and once.Wait() blocks until
// then.
//
// Also once.Do(nil) will not panic, but act similar to once.Do(func(){}).
type Once struct {
	m    sync.Mutex
	done Bool
	c    chan struct{}
}

// Do will call f() and return true, the first time once.Do() is called.
// All following calls to once.Do() will not call f() and return false.
func (o *Once) Do(f func()) bool {
	// Quickly check if done
	if o.done.Get() {
		return false
	}

	// Lock so that we don't set done twice!
	o.m.Lock()
	defer o.m.Unlock()

	if o.done.Get() {
		return false
	}

	// Mark done before calling f, so a nested once.Do() from inside f sees
	// the quick check and doesn't deadlock on the lock
	o.done.Set(true)

	// Close channel if anyone is waiting, also on panic
	defer func() {
		if o.c != nil {
			close(o.c)
		}
	}()

	if f != nil {
		f()
	}
	return true
}

// IsDone returns true if once.Do() have been called.
func (o *Once) IsDone() bool {
	return o.done.Get()
}

// Done returns a channel that is closed when once.Do() have been called.
func (o *Once) Done() <-chan struct{} {
	o.m.Lock()
	defer o.m.Unlock()

	// Lazily initialize the channel, closed upfront if we're already done
	if o.c == nil {
		o.c = make(chan struct{})
		if o.done.Get() {
			close(o.c)
		}
	}
	return o.c
}

// Wait will block until once.Do() have been called. After this once.Wait()
// will always return immediately.
func (o *Once) Wait() {
	<-o.Done()
}
