package lighttool

// Signal is a list of callbacks fired in registration order.
// Signals are not goroutine safe; connect and emit on the UI thread.
type Signal[T any] struct {
	handlers []signalHandler[T]
	nextID   uint32
}

type signalHandler[T any] struct {
	id uint32
	fn func(T)
}

// Connection allows removing a callback registered on a Signal.
type Connection struct {
	id     uint32
	remove func(uint32)
}

// Remove unregisters the callback so it no longer fires.
// Removing a zero Connection or removing twice is a no-op.
func (c Connection) Remove() {
	if c.remove == nil {
		return
	}
	c.remove(c.id)
}

// Connect registers fn and returns a Connection for removing it.
func (s *Signal[T]) Connect(fn func(T)) Connection {
	s.nextID++
	id := s.nextID
	s.handlers = append(s.handlers, signalHandler[T]{id: id, fn: fn})
	return Connection{id: id, remove: s.disconnect}
}

// Emit calls every connected callback with v. Callbacks connected or
// removed during emission take effect from the next Emit.
func (s *Signal[T]) Emit(v T) {
	if len(s.handlers) == 0 {
		return
	}
	handlers := make([]signalHandler[T], len(s.handlers))
	copy(handlers, s.handlers)
	for _, h := range handlers {
		h.fn(v)
	}
}

// Len returns the number of connected callbacks.
func (s *Signal[T]) Len() int {
	return len(s.handlers)
}

// disconnect removes the handler with the given id.
// The entry is removed from the slice to avoid nil iteration waste.
func (s *Signal[T]) disconnect(id uint32) {
	for i := range s.handlers {
		if s.handlers[i].id == id {
			copy(s.handlers[i:], s.handlers[i+1:])
			s.handlers[len(s.handlers)-1] = signalHandler[T]{}
			s.handlers = s.handlers[:len(s.handlers)-1]
			return
		}
	}
}

// connections is a set of connections removed together.
type connections []Connection

func (c *connections) add(conn Connection) {
	*c = append(*c, conn)
}

func (c *connections) clear() {
	for _, conn := range *c {
		conn.Remove()
	}
	*c = (*c)[:0]
}
