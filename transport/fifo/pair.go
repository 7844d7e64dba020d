package fifo

import "io"

// pairEndpoint is an in-process duplex endpoint built from two io.Pipes,
// used by Pair for tests that want the fifo package's exact Send/Recv
// shape without touching the filesystem.
type pairEndpoint struct {
	r *io.PipeReader
	w *io.PipeWriter
}

func (c *pairEndpoint) Send(p []byte) error {
	_, err := c.w.Write(p)
	return err
}

func (c *pairEndpoint) Recv(p []byte) error {
	_, err := io.ReadFull(c.r, p)
	return err
}

func (c *pairEndpoint) Close() error {
	c.w.Close()
	return c.r.Close()
}

// Pair returns two connected in-process endpoints: a's Send feeds b's
// Recv and vice versa. It never touches the filesystem.
func Pair() (a, b *pairEndpoint) {
	r1, w1 := io.Pipe()
	r2, w2 := io.Pipe()
	a = &pairEndpoint{r: r1, w: w2}
	b = &pairEndpoint{r: r2, w: w1}
	return a, b
}
