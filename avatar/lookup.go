package avatar

import "context"

// Lookup is the shared result of one lookup chain. Every caller asking for
// the same identity receives the same *Lookup, whether the chain is still
// running or already settled. An empty URL means no avatar was found.
type Lookup struct {
	done chan struct{}
	url  string
}

func newLookup() *Lookup {
	return &Lookup{done: make(chan struct{})}
}

// settledLookup returns a Lookup that is already fulfilled with url.
func settledLookup(url string) *Lookup {
	l := newLookup()
	l.settle(url)
	return l
}

// settle must be called exactly once.
func (l *Lookup) settle(url string) {
	l.url = url
	close(l.done)
}

// Done is closed once the lookup has settled.
func (l *Lookup) Done() <-chan struct{} {
	return l.done
}

// Settled returns the URL and true once the lookup has settled.
func (l *Lookup) Settled() (string, bool) {
	select {
	case <-l.done:
		return l.url, true
	default:
		return "", false
	}
}

// Wait blocks until the lookup settles or ctx is done. Giving up only stops
// this caller from waiting; the chain keeps running and its result is still
// cached.
func (l *Lookup) Wait(ctx context.Context) (string, error) {
	select {
	case <-l.done:
		return l.url, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Then calls fn with the URL once the lookup settles, including when it
// settles empty. On a settled lookup fn runs before Then returns, otherwise
// on its own goroutine. A lookup that never settles never calls fn.
func (l *Lookup) Then(fn func(url string)) {
	if url, ok := l.Settled(); ok {
		fn(url)
		return
	}
	go func() {
		<-l.done
		fn(l.url)
	}()
}
