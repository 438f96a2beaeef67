package broadcast

import "sync"

// Broadcaster fans events out to every registered listener.
// Sends never block the caller, each listener receives on its
// own goroutine if its channel is not immediately ready.
type Broadcaster struct {
	mu        sync.Mutex
	buf       int
	listeners []*Listener
}

type Listener struct {
	Ch   chan interface{}
	b    *Broadcaster
	done chan interface{}
	once sync.Once
}

// Close unregisters the listener. Events already buffered on Ch stay
// readable, nothing new arrives after Close returns and any send still
// waiting on this listener is abandoned.
func (l *Listener) Close() {
	l.once.Do(func() {
		l.b.unregister(l)
		close(l.done)
	})
}

func New(buf int) *Broadcaster {
	return &Broadcaster{buf: buf}
}

func (b *Broadcaster) Listen() *Listener {
	b.mu.Lock()
	defer b.mu.Unlock()
	l := &Listener{Ch: make(chan interface{}, b.buf), b: b, done: make(chan interface{})}
	b.listeners = append(b.listeners, l)
	return l
}

func (b *Broadcaster) unregister(l *Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, registered := range b.listeners {
		if registered == l {
			b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
			return
		}
	}
}

func (b *Broadcaster) Send(e interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, l := range b.listeners {
		select {
		case l.Ch <- e:
		default:
			go func(l *Listener) {
				select {
				case l.Ch <- e:
				case <-l.done:
				}
			}(l)
		}
	}
}
