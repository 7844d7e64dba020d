package nadam

import (
	"errors"
	"testing"
)

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := NewCatalog([]MessageDescriptor{
		{Name: "ping", Size: Fixed(4), Hash: hashFor(1)},
		{Name: "echo", Size: Variable(32), Hash: hashFor(2)},
	})
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	return c
}

func TestDispatchTableDefaultsToNoop(t *testing.T) {
	dt := newDispatchTable(testCatalog(t))
	handler, buf, flag := dt.bindings[0].load()
	if buf == nil || &buf[0] != &dt.commonBuffer[0] {
		t.Fatalf("default binding buffer is not the shared common buffer")
	}
	if flag != dt.throwaway {
		t.Fatalf("default binding start flag is not the throwaway flag")
	}
	// calling the default handler must not panic
	handler(nil, nil)
}

func TestDispatchSetHandlerRequiresBuffer(t *testing.T) {
	dt := newDispatchTable(testCatalog(t))
	called := false
	err := dt.setHandler(0, func(msg []byte, d *MessageDescriptor) { called = true }, nil, nil)
	if !errors.Is(err, ErrInvalidHandlerBuffer) {
		t.Fatalf("setHandler(no buffer) = %v, want ErrInvalidHandlerBuffer", err)
	}
	_ = called
}

func TestDispatchSetHandlerNilResetsToNoop(t *testing.T) {
	dt := newDispatchTable(testCatalog(t))
	buf := make([]byte, 4)
	if err := dt.setHandler(0, func(msg []byte, d *MessageDescriptor) {}, buf, nil); err != nil {
		t.Fatalf("setHandler: %v", err)
	}

	if err := dt.setHandler(0, nil, nil, nil); err != nil {
		t.Fatalf("setHandler(nil) = %v, want nil", err)
	}

	_, gotBuf, gotFlag := dt.bindings[0].load()
	if &gotBuf[0] != &dt.commonBuffer[0] {
		t.Fatalf("setHandler(nil) did not restore the common buffer")
	}
	if gotFlag != dt.throwaway {
		t.Fatalf("setHandler(nil) did not restore the throwaway start flag")
	}
}

func TestDispatchSetHandlerDefaultsStartFlagToThrowaway(t *testing.T) {
	dt := newDispatchTable(testCatalog(t))
	buf := make([]byte, 4)
	if err := dt.setHandler(0, func(msg []byte, d *MessageDescriptor) {}, buf, nil); err != nil {
		t.Fatalf("setHandler: %v", err)
	}
	_, _, flag := dt.bindings[0].load()
	if flag != dt.throwaway {
		t.Fatalf("setHandler with nil startFlag did not default to throwaway")
	}
}

func TestStartFlagObservedClears(t *testing.T) {
	var f StartFlag
	if f.Observed() {
		t.Fatalf("fresh StartFlag reported Observed() = true")
	}
	f.signal()
	if !f.Observed() {
		t.Fatalf("signaled StartFlag reported Observed() = false")
	}
	if f.Observed() {
		t.Fatalf("Observed() did not clear the flag")
	}
}
