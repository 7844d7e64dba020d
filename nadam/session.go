package nadam

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"unsafe"
)

// state tracks where a Session sits in its lifecycle, enforcing the
// ordering spec §4.5 requires: handlers may be bound before or after
// Initiate, but Initiate may only run once per Session and Send/Stop
// only make sense once it has.
type state int

const (
	stateIdle state = iota
	stateRunning
	stateStopped
)

// Session is one side of a nadam connection: a fixed Catalog, the
// dispatch table handlers are bound into, and — once Initiate has run —
// the negotiated tag length and background receive loop.
//
// A Session is safe for concurrent use: SetHandler/SetHandlerWithBuffer
// may be called from any goroutine at any time, including while the
// receive loop is dispatching into the very slot being rebound, and
// Send/SendWithImmutableName may be called concurrently with both —
// though concurrent Sends racing each other on the same transport is
// the caller's problem to serialize, since Sender itself carries no
// locking.
type Session struct {
	catalog  *Catalog
	dispatch *dispatchTable

	mu       sync.Mutex
	st       state
	tagLen   int
	tagIndex map[uint32]int
	send     Sender
	cancel   context.CancelFunc
	done     chan struct{}

	nameCacheMu sync.Mutex
	nameCache   map[uintptr]int
}

// NewSession builds a Session around catalog. The Session does not talk
// to any transport until Initiate is called.
func NewSession(catalog *Catalog) *Session {
	return &Session{
		catalog:   catalog,
		dispatch:  newDispatchTable(catalog),
		nameCache: make(map[uintptr]int),
	}
}

// SetHandler binds handler to the message named name, delivering into
// the Session's shared common buffer. Passing a nil handler reverts the
// slot to the no-op default. See SetHandlerWithBuffer to supply a
// caller-owned buffer and/or a StartFlag.
func (s *Session) SetHandler(name string, handler HandlerFunc) error {
	return s.SetHandlerWithBuffer(name, handler, s.dispatch.commonBuffer, nil)
}

// SetHandlerWithBuffer binds handler to the message named name,
// delivering into buffer instead of the shared common buffer. buffer
// must be at least as large as the message's maximum wire size when
// handler is non-nil. startFlag, if non-nil, is signaled immediately
// before the body is read into buffer.
func (s *Session) SetHandlerWithBuffer(name string, handler HandlerFunc, buffer []byte, startFlag *StartFlag) error {
	index, err := s.catalog.IndexForName(name)
	if err != nil {
		return err
	}
	return s.dispatch.setHandler(index, handler, buffer, startFlag)
}

// Initiate performs the one-byte tag-length handshake over send/recv,
// builds the tag lookup table at the negotiated length, and starts the
// background receive loop. onError is invoked at most once, from the
// receive loop's goroutine, on any fatal framing or transport failure;
// it must not be nil. Initiate may be called at most once per Session.
func (s *Session) Initiate(minTagLen int, send Sender, recv Receiver, onError ErrorFunc) error {
	if minTagLen < 1 || minTagLen > MaxTagLen {
		return ErrInvalidMinTagLen
	}
	if send == nil || recv == nil || onError == nil {
		return ErrNullCallback
	}

	s.mu.Lock()
	if s.st != stateIdle {
		s.mu.Unlock()
		return ErrAllocationFailed
	}
	s.st = stateRunning
	s.mu.Unlock()

	tagLen, err := handshake(minTagLen, send, recv)
	if err != nil {
		s.mu.Lock()
		s.st = stateIdle
		s.mu.Unlock()
		return err
	}

	tagIndex, err := s.catalog.buildTagIndex(tagLen)
	if err != nil {
		s.mu.Lock()
		s.st = stateIdle
		s.mu.Unlock()
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.tagLen = tagLen
	s.tagIndex = tagIndex
	s.send = send
	s.cancel = cancel
	s.done = make(chan struct{})
	s.mu.Unlock()

	r := &receiver{
		catalog:  s.catalog,
		dispatch: s.dispatch,
		tagIndex: tagIndex,
		tagLen:   tagLen,
		recv:     recv,
		onError:  onError,
	}

	go func() {
		defer close(s.done)
		r.run(ctx)
	}()

	return nil
}

// handshake exchanges one length byte each way and returns
// max(local, peer), matching the original implementation's rule that
// the stronger of the two proposals wins.
func handshake(minTagLen int, send Sender, recv Receiver) (int, error) {
	out := [1]byte{byte(minTagLen)}
	if err := send(out[:]); err != nil {
		return 0, ErrHandshakeSend
	}

	var in [1]byte
	if err := recv(in[:]); err != nil {
		return 0, ErrHandshakeRecv
	}

	peerLen := int(in[0])
	if peerLen < 1 || peerLen > MaxTagLen {
		return 0, ErrInvalidHandshakeTagLen
	}

	tagLen := minTagLen
	if peerLen > tagLen {
		tagLen = peerLen
	}
	return tagLen, nil
}

// Send writes one message of the given name, framing body according to
// its catalog descriptor. For a Variable message, size is the actual
// length to send and must not exceed the descriptor's max; for a Fixed
// message the descriptor's exact total is always sent regardless of
// len(body), so body must be at least that long.
func (s *Session) Send(name string, body []byte, size uint32) error {
	index, err := s.catalog.IndexForName(name)
	if err != nil {
		return err
	}
	return s.sendIndex(index, body, size)
}

// SendWithImmutableName behaves like Send but skips the name-to-index
// map lookup on repeat calls with the same string constant, caching the
// resolved index keyed by the string's backing-array address. This is
// only safe to use with a name that is a Go string literal or other
// value whose backing storage is never reused for different contents
// for the lifetime of the Session — the same assumption the original C
// API placed on a caller passing a string literal as a message name.
func (s *Session) SendWithImmutableName(name string, body []byte, size uint32) error {
	addr := stringAddr(name)

	s.nameCacheMu.Lock()
	index, cached := s.nameCache[addr]
	s.nameCacheMu.Unlock()

	if !cached {
		var err error
		index, err = s.catalog.IndexForName(name)
		if err != nil {
			return err
		}
		s.nameCacheMu.Lock()
		s.nameCache[addr] = index
		s.nameCacheMu.Unlock()
	}

	return s.sendIndex(index, body, size)
}

func (s *Session) sendIndex(index int, body []byte, size uint32) error {
	s.mu.Lock()
	send := s.send
	tagLen := s.tagLen
	running := s.st == stateRunning
	s.mu.Unlock()

	if !running || send == nil {
		return ErrAllocationFailed
	}

	descriptor := s.catalog.At(index)

	var err error
	if descriptor.Size.Variable {
		err = sendVariable(send, tagLen, descriptor, body, size)
	} else {
		err = sendFixed(send, tagLen, descriptor, body)
	}
	if err == nil || errors.Is(err, ErrPayloadTooLarge) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrTransportSend, err)
}

// Stop cancels the background receive loop and waits for it to return.
// It is safe to call more than once and safe to call on a Session that
// was never Initiated.
func (s *Session) Stop() {
	s.mu.Lock()
	if s.st != stateRunning {
		s.mu.Unlock()
		return
	}
	s.st = stateStopped
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// stringAddr returns the address of name's backing byte array, or 0 for
// an empty string. It is used only as a cache key and never
// dereferenced.
func stringAddr(s string) uintptr {
	if len(s) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(unsafe.StringData(s)))
}
