package stats

import (
	"testing"

	"github.com/tez-capital/nadam/nadam"
)

func TestWrapCountsDeliveries(t *testing.T) {
	c := New()
	var delivered []byte
	handler := c.Wrap("ping", func(msg []byte, d *nadam.MessageDescriptor) {
		delivered = append([]byte(nil), msg...)
	})

	handler([]byte("hello"), nil)
	handler([]byte("hi"), nil)

	entries := c.Snapshot()
	if len(entries) != 1 {
		t.Fatalf("Snapshot() has %d entries, want 1", len(entries))
	}
	if entries[0].Count != 2 {
		t.Fatalf("Count = %d, want 2", entries[0].Count)
	}
	if entries[0].LastSize != 2 {
		t.Fatalf("LastSize = %d, want 2", entries[0].LastSize)
	}
	if string(delivered) != "hi" {
		t.Fatalf("last delivered payload = %q, want %q", delivered, "hi")
	}
}

func TestWrapWithNilNextOnlyCounts(t *testing.T) {
	c := New()
	handler := c.Wrap("heartbeat", nil)
	handler([]byte{1, 2, 3, 4}, nil)

	entries := c.Snapshot()
	if entries[0].Count != 1 {
		t.Fatalf("Count = %d, want 1", entries[0].Count)
	}
}

func TestSetTagRecordsWithoutHandler(t *testing.T) {
	c := New()
	c.SetTag("pong", "abc123")

	entries := c.Snapshot()
	if len(entries) != 1 || entries[0].Tag != "abc123" {
		t.Fatalf("Snapshot() = %+v, want one entry tagged abc123", entries)
	}
}

func TestSnapshotIsSortedByName(t *testing.T) {
	c := New()
	c.SetTag("zeta", "z")
	c.SetTag("alpha", "a")

	entries := c.Snapshot()
	if len(entries) != 2 || entries[0].Name != "alpha" || entries[1].Name != "zeta" {
		t.Fatalf("Snapshot() = %+v, want alpha before zeta", entries)
	}
}
