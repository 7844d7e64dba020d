package nadam

import (
	"errors"
	"testing"
)

func hashFor(b byte) [HashLen]byte {
	var h [HashLen]byte
	for i := range h {
		h[i] = b
	}
	return h
}

func TestNewCatalogRejectsEmpty(t *testing.T) {
	_, err := NewCatalog(nil)
	if !errors.Is(err, ErrEmptyCatalog) {
		t.Fatalf("NewCatalog(nil) = %v, want ErrEmptyCatalog", err)
	}
}

func TestNewCatalogRejectsDuplicateName(t *testing.T) {
	descs := []MessageDescriptor{
		{Name: "ping", Size: Fixed(4), Hash: hashFor(1)},
		{Name: "ping", Size: Fixed(8), Hash: hashFor(2)},
	}
	_, err := NewCatalog(descs)
	if !errors.Is(err, ErrNameCollision) {
		t.Fatalf("NewCatalog(dup) = %v, want ErrNameCollision", err)
	}
}

func TestCatalogIndexForName(t *testing.T) {
	c, err := NewCatalog([]MessageDescriptor{
		{Name: "ping", Size: Fixed(4), Hash: hashFor(1)},
		{Name: "pong", Size: Variable(64), Hash: hashFor(2)},
	})
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}

	i, err := c.IndexForName("pong")
	if err != nil || i != 1 {
		t.Fatalf("IndexForName(pong) = (%d, %v), want (1, nil)", i, err)
	}

	if _, err := c.IndexForName("absent"); !errors.Is(err, ErrUnknownName) {
		t.Fatalf("IndexForName(absent) = %v, want ErrUnknownName", err)
	}
}

func TestCatalogMaxMessageSize(t *testing.T) {
	c, err := NewCatalog([]MessageDescriptor{
		{Name: "a", Size: Fixed(4), Hash: hashFor(1)},
		{Name: "b", Size: Variable(128), Hash: hashFor(2)},
		{Name: "c", Size: Fixed(16), Hash: hashFor(3)},
	})
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	if got := c.maxMessageSize(); got != 128 {
		t.Fatalf("maxMessageSize() = %d, want 128", got)
	}
}

func TestTruncateTagLittleEndian(t *testing.T) {
	hash := [HashLen]byte{0x01, 0x02, 0x03, 0x04, 0xff}
	got := truncateTag(hash, 2)
	want := uint32(0x0201)
	if got != want {
		t.Fatalf("truncateTag(_, 2) = %#x, want %#x", got, want)
	}

	got = truncateTag(hash, 4)
	want = uint32(0x04030201)
	if got != want {
		t.Fatalf("truncateTag(_, 4) = %#x, want %#x", got, want)
	}
}

func TestBuildTagIndexDetectsCollision(t *testing.T) {
	c, err := NewCatalog([]MessageDescriptor{
		{Name: "a", Size: Fixed(1), Hash: hashFor(0xAB)},
		{Name: "b", Size: Fixed(1), Hash: hashFor(0xAB)},
	})
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}

	if _, err := c.buildTagIndex(1); !errors.Is(err, ErrTagCollision) {
		t.Fatalf("buildTagIndex(1) = %v, want ErrTagCollision", err)
	}

	// Both hashes are identical, so the two entries collide at every
	// tagLen, not only at 1.
}

func TestBuildTagIndexNoCollision(t *testing.T) {
	h1 := hashFor(0x01)
	h2 := hashFor(0x01)
	h2[0] = 0x02

	c, err := NewCatalog([]MessageDescriptor{
		{Name: "a", Size: Fixed(1), Hash: h1},
		{Name: "b", Size: Fixed(1), Hash: h2},
	})
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}

	idx, err := c.buildTagIndex(1)
	if err != nil {
		t.Fatalf("buildTagIndex(1) = %v, want nil error", err)
	}
	if len(idx) != 2 {
		t.Fatalf("buildTagIndex(1) produced %d entries, want 2", len(idx))
	}
}
