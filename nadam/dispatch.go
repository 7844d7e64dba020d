package nadam

import "sync"

// HandlerFunc receives one fully-read message body and the descriptor it
// was dispatched against. msg is exactly the message's actual size — for
// a Variable message that may be shorter than the descriptor's Max — and
// its storage is either the Session's shared common buffer or a buffer
// the caller supplied via SetHandlerWithBuffer. In the former case the
// contents are only valid until the next message is received; in the
// latter the caller owns the buffer and its lifetime.
type HandlerFunc func(msg []byte, descriptor *MessageDescriptor)

// StartFlag is set to true by the receive loop immediately before it
// begins reading a message's body into the handler's buffer, letting an
// embedder observe that a specific message type has begun arriving. It
// is safe to read and write from any goroutine.
type StartFlag struct {
	set bool
	mu  sync.Mutex
}

func (f *StartFlag) signal() {
	f.mu.Lock()
	f.set = true
	f.mu.Unlock()
}

// Observed reports whether the receive loop has started delivering a
// message into this flag's buffer, and clears the flag.
func (f *StartFlag) Observed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	v := f.set
	f.set = false
	return v
}

func noopHandler(msg []byte, descriptor *MessageDescriptor) {}

// binding is one dispatch-table slot. It has its own mutex (spec §9's
// "small per-slot mutex" option, adopted by SPEC_FULL §5.3) so that
// SetHandlerWithBuffer may be called concurrently with the receive loop
// reading the same slot without tearing the three-field tuple.
type binding struct {
	mu        sync.Mutex
	handler   HandlerFunc
	buffer    []byte
	startFlag *StartFlag
}

func (b *binding) reset(commonBuffer []byte, throwaway *StartFlag) {
	b.mu.Lock()
	b.handler = noopHandler
	b.buffer = commonBuffer
	b.startFlag = throwaway
	b.mu.Unlock()
}

func (b *binding) set(handler HandlerFunc, buffer []byte, startFlag *StartFlag) {
	b.mu.Lock()
	b.handler = handler
	b.buffer = buffer
	b.startFlag = startFlag
	b.mu.Unlock()
}

func (b *binding) load() (HandlerFunc, []byte, *StartFlag) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.handler, b.buffer, b.startFlag
}

// dispatchTable is the resource manager's per-(re)init allocation: one
// binding per catalog slot, plus the buffer every no-op/default-bound
// slot shares.
type dispatchTable struct {
	bindings     []binding
	commonBuffer []byte
	throwaway    *StartFlag
}

func newDispatchTable(catalog *Catalog) *dispatchTable {
	dt := &dispatchTable{
		bindings:     make([]binding, catalog.Len()),
		commonBuffer: make([]byte, catalog.maxMessageSize()+1),
		throwaway:    &StartFlag{},
	}
	for i := range dt.bindings {
		dt.bindings[i].reset(dt.commonBuffer, dt.throwaway)
	}
	return dt
}

func (dt *dispatchTable) setHandler(index int, handler HandlerFunc, buffer []byte, startFlag *StartFlag) error {
	b := &dt.bindings[index]

	if handler == nil {
		b.reset(dt.commonBuffer, dt.throwaway)
		return nil
	}

	if buffer == nil {
		return ErrInvalidHandlerBuffer
	}

	if startFlag == nil {
		startFlag = dt.throwaway
	}

	b.set(handler, buffer, startFlag)
	return nil
}
