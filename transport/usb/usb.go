// Package usb provides a nadam transport over a pair of bulk USB
// endpoints, for peers connected by a physical or virtual USB link
// instead of a FIFO or socket.
package usb

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/gousb"
)

var (
	ErrDeviceNotFound = errors.New("usb: no device matched vendor/product id")
	ErrNoSuchEndpoint = errors.New("usb: endpoint not present on default interface")
)

// Device is a nadam transport bound to one bulk IN and one bulk OUT
// endpoint of a USB device's default interface. Send/Recv satisfy
// nadam.Sender and nadam.Receiver once bound to a value.
type Device struct {
	ctx    *gousb.Context
	dev    *gousb.Device
	iface  *gousb.Interface
	ifaceDone func()
	in     *gousb.InEndpoint
	out    *gousb.OutEndpoint
}

// Open claims the default interface of the first device matching
// vid/pid and binds its bulk endpoints inEP/outEP. The returned Device
// owns the USB context and must be Closed by the caller.
func Open(vid, pid gousb.ID, inEP, outEP int) (*Device, error) {
	usbCtx := gousb.NewContext()

	dev, err := usbCtx.OpenDeviceWithVIDPID(vid, pid)
	if err != nil {
		usbCtx.Close()
		return nil, fmt.Errorf("usb: open device: %w", err)
	}
	if dev == nil {
		usbCtx.Close()
		return nil, ErrDeviceNotFound
	}

	if err := dev.SetAutoDetach(true); err != nil {
		dev.Close()
		usbCtx.Close()
		return nil, fmt.Errorf("usb: set auto detach: %w", err)
	}

	iface, done, err := dev.DefaultInterface()
	if err != nil {
		dev.Close()
		usbCtx.Close()
		return nil, fmt.Errorf("usb: claim default interface: %w", err)
	}

	in, err := iface.InEndpoint(inEP)
	if err != nil {
		done()
		dev.Close()
		usbCtx.Close()
		return nil, fmt.Errorf("%w: in endpoint %d: %v", ErrNoSuchEndpoint, inEP, err)
	}

	out, err := iface.OutEndpoint(outEP)
	if err != nil {
		done()
		dev.Close()
		usbCtx.Close()
		return nil, fmt.Errorf("%w: out endpoint %d: %v", ErrNoSuchEndpoint, outEP, err)
	}

	return &Device{ctx: usbCtx, dev: dev, iface: iface, ifaceDone: done, in: in, out: out}, nil
}

// Send writes all of p to the bulk OUT endpoint.
func (d *Device) Send(p []byte) error {
	n, err := d.out.Write(p)
	if err != nil {
		return err
	}
	if n != len(p) {
		return fmt.Errorf("usb: short write: wrote %d of %d bytes", n, len(p))
	}
	return nil
}

// Recv reads exactly len(p) bytes from the bulk IN endpoint,
// accumulating across short reads the way a bulk endpoint may return
// them.
func (d *Device) Recv(p []byte) error {
	for read := 0; read < len(p); {
		n, err := d.in.Read(p[read:])
		if err != nil {
			return err
		}
		read += n
	}
	return nil
}

// RecvContext is like Recv but aborts early if ctx is done between
// reads, for embedders that want Session.Stop to unblock promptly
// without waiting on the USB stack's own timeout.
func (d *Device) RecvContext(ctx context.Context, p []byte) error {
	for read := 0; read < len(p); {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		n, err := d.in.Read(p[read:])
		if err != nil {
			return err
		}
		read += n
	}
	return nil
}

// Close releases the interface, the device, and the USB context.
func (d *Device) Close() error {
	d.ifaceDone()
	if err := d.dev.Close(); err != nil {
		d.ctx.Close()
		return err
	}
	return d.ctx.Close()
}
