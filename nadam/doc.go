// Package nadam implements a small, embeddable message-framing and
// dispatch protocol for two peers exchanging named, typed messages over
// any reliable, ordered, bidirectional byte stream.
//
// Each peer is configured with an identical Catalog of known message
// types. Every type carries a 20-byte content hash; peers negotiate a
// shared prefix length for that hash during a one-byte handshake and use
// the truncated prefix as the on-wire type tag from then on. After the
// handshake a Session runs a single background receive loop that looks
// up each incoming tag, reads the (possibly variable-length) body, and
// dispatches it to whatever handler was installed for that type.
//
// The wire transport itself — sockets, pipes, FIFOs, USB endpoints — is
// not part of this package. Callers supply a Sender and a Receiver, two
// blocking, all-or-nothing primitives, to Session.Initiate. See the
// transport/fifo and transport/usb packages for reference
// implementations.
package nadam
