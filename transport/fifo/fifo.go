// Package fifo provides a pair of named-pipe transports for nadam
// Sessions running in two separate processes on the same host, plus an
// in-process Pair for tests. It mirrors the two-FIFO duplex scheme the
// original nadam example used (one pipe per direction). Dial opens both
// pipes with blocking opens, so it waits until the peer opens its ends.
package fifo

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"
)

// Role selects which of the two named pipes a process writes to and
// which it reads from, since a FIFO is one-directional.
type Role int

const (
	// RoleA opens "aToB" for writing and "bToA" for reading.
	RoleA Role = iota
	// RoleB opens "aToB" for reading and "bToA" for writing.
	RoleB
)

const (
	nameAToB = "a_to_b"
	nameBToA = "b_to_a"
)

var (
	ErrFIFOCreate = errors.New("fifo: failed to create named pipe")
	ErrFIFOOpen   = errors.New("fifo: failed to open named pipe")
)

// Endpoint is a bidirectional byte-stream endpoint. Its Send/Recv methods
// satisfy nadam.Sender and nadam.Receiver once bound to a value
// (conn.Send, conn.Recv).
type Endpoint struct {
	in  *os.File
	out *os.File

	closeOnce sync.Once
}

// MakeFIFOs creates the pair of named pipes inside dir, if they do not
// already exist. Either peer may call it; a second call is a no-op.
func MakeFIFOs(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrFIFOCreate, err)
	}
	for _, name := range []string{nameAToB, nameBToA} {
		path := filepath.Join(dir, name)
		if err := syscall.Mkfifo(path, 0o666); err != nil && !errors.Is(err, syscall.EEXIST) {
			return fmt.Errorf("%w: %s: %v", ErrFIFOCreate, path, err)
		}
	}
	return nil
}

// Dial opens the two named pipes inside dir according to role, blocking
// until the peer has opened its matching ends (standard FIFO open
// semantics). Call MakeFIFOs first.
func Dial(dir string, role Role) (*Endpoint, error) {
	aToB := filepath.Join(dir, nameAToB)
	bToA := filepath.Join(dir, nameBToA)

	var outPath, inPath string
	switch role {
	case RoleA:
		outPath, inPath = aToB, bToA
	case RoleB:
		outPath, inPath = bToA, aToB
	default:
		return nil, fmt.Errorf("%w: invalid role %d", ErrFIFOOpen, role)
	}

	out, err := os.OpenFile(outPath, os.O_WRONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFIFOOpen, outPath, err)
	}
	in, err := os.OpenFile(inPath, os.O_RDONLY, 0)
	if err != nil {
		out.Close()
		return nil, fmt.Errorf("%w: %s: %v", ErrFIFOOpen, inPath, err)
	}

	return &Endpoint{in: in, out: out}, nil
}

// Send writes all of p to the outbound pipe.
func (c *Endpoint) Send(p []byte) error {
	_, err := c.out.Write(p)
	return err
}

// Recv reads exactly len(p) bytes from the inbound pipe.
func (c *Endpoint) Recv(p []byte) error {
	_, err := io.ReadFull(c.in, p)
	return err
}

// Close closes both pipe ends. A receiver blocked in Recv unblocks with
// an error once the peer closes its end; a receiver blocked on its own
// local close unblocks immediately since the read end stops there too.
func (c *Endpoint) Close() error {
	var err error
	c.closeOnce.Do(func() {
		if e := c.out.Close(); e != nil {
			err = e
		}
		if e := c.in.Close(); e != nil && err == nil {
			err = e
		}
	})
	return err
}

// SetDeadline forwards to both underlying files, letting an embedder
// bound how long a Recv may block — handy for responsive shutdown when
// the peer process itself won't be closing its end promptly.
func (c *Endpoint) SetDeadline(t time.Time) error {
	if err := c.in.SetDeadline(t); err != nil {
		return err
	}
	return c.out.SetDeadline(t)
}
