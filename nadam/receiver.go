package nadam

import (
	"context"
	"encoding/binary"
	"fmt"
)

// receiver owns the single background read loop for one Session. It is
// constructed fresh by every Initiate call and discarded by Stop; there
// is no pause/resume, matching the original's one-shot recv thread.
type receiver struct {
	catalog  *Catalog
	dispatch *dispatchTable
	tagIndex map[uint32]int
	tagLen   int
	recv     Receiver
	onError  ErrorFunc
}

// run reads frames until ctx is cancelled or a fatal error occurs. A
// fatal error is reported exactly once via r.onError and then the loop
// returns; it never retries on its own. Cancellation is expected to be
// backed by the transport's Recv unblocking with an error of its own
// once the embedder closes or shuts down the underlying connection —
// the context is only checked between frames, not during a blocking
// Recv call (spec §9, resolved in SPEC_FULL §5.4).
func (r *receiver) run(ctx context.Context) {
	tagBuf := make([]byte, r.tagLen)
	lenBuf := make([]byte, 4)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := r.recv(tagBuf); err != nil {
			if ctx.Err() != nil {
				return
			}
			r.fail(RecvTransportFailed, ErrTransportRecv, err)
			return
		}

		var tag uint32
		for i := 0; i < r.tagLen; i++ {
			tag |= uint32(tagBuf[i]) << (8 * i)
		}

		index, ok := r.tagIndex[tag]
		if !ok {
			r.fail(RecvUnknownTag, ErrUnknownTag, nil)
			return
		}

		descriptor := r.catalog.At(index)
		handler, buffer, startFlag := r.dispatch.bindings[index].load()

		var size uint32
		if descriptor.Size.Variable {
			if err := r.recv(lenBuf); err != nil {
				r.fail(RecvTransportFailed, ErrTransportRecv, err)
				return
			}
			size = binary.LittleEndian.Uint32(lenBuf)
			if size > descriptor.Size.Max {
				r.fail(RecvPayloadTooLargeOnWire, ErrPayloadTooLargeOnWire, nil)
				return
			}
		} else {
			size = descriptor.Size.Total
		}

		startFlag.signal()

		body := buffer[:size]
		if err := r.recv(body); err != nil {
			r.fail(RecvTransportFailed, ErrTransportRecv, err)
			return
		}

		handler(body, descriptor)
	}
}

func (r *receiver) fail(kind RecvKind, sentinel error, cause error) {
	wrapped := sentinel
	if cause != nil {
		wrapped = fmt.Errorf("%w: %w", sentinel, cause)
	}
	r.onError(newRecvError(kind, wrapped))
}
