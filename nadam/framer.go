package nadam

import "encoding/binary"

// Sender delivers all n bytes of p to the peer, or returns a non-nil
// error. It must be blocking and all-or-nothing: a transport that can
// only partially complete a write has no way to represent that to this
// package. Concurrent calls from multiple goroutines are the caller's
// responsibility to serialize; nadam assumes a single writer.
type Sender func(p []byte) error

// Receiver reads exactly n = len(p) bytes into p, or returns a non-nil
// error — including on a short read at EOF, which must not be reported
// as success. It must be blocking and all-or-nothing for the same
// reason as Sender.
type Receiver func(p []byte) error

// ErrorFunc is invoked at most once, from the receive loop's goroutine,
// when a fatal framing or transport error terminates reception. No
// further messages will be delivered after it returns; the embedder is
// expected to close the transport and call Session.Stop.
type ErrorFunc func(err error)

// frameTag writes the descriptor's hash truncated to tagLen bytes.
func frameTag(send Sender, hash [HashLen]byte, tagLen int) error {
	return send(hash[:tagLen])
}

// sendFixed emits tag || body for a Fixed-size descriptor. size is
// ignored, matching spec §4.3.
func sendFixed(send Sender, tagLen int, d *MessageDescriptor, body []byte) error {
	if err := frameTag(send, d.Hash, tagLen); err != nil {
		return err
	}
	return send(body[:d.Size.Total])
}

// sendVariable emits tag || len32le || body for a Variable-size
// descriptor, rejecting an oversize payload before any byte reaches the
// transport.
func sendVariable(send Sender, tagLen int, d *MessageDescriptor, body []byte, size uint32) error {
	if size > d.Size.Max {
		return ErrPayloadTooLarge
	}

	if err := frameTag(send, d.Hash, tagLen); err != nil {
		return err
	}

	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], size)
	if err := send(lenBuf[:]); err != nil {
		return err
	}

	return send(body[:size])
}
