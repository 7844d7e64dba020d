package demo

import "testing"

func TestNewCatalogResolves(t *testing.T) {
	catalog, err := NewCatalog()
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	if catalog.Len() != len(Specs) {
		t.Fatalf("catalog has %d entries, want %d", catalog.Len(), len(Specs))
	}

	for _, name := range []string{"ping", "pong", "heartbeat"} {
		if _, err := catalog.IndexForName(name); err != nil {
			t.Errorf("IndexForName(%q): %v", name, err)
		}
	}
}

func TestHeartbeatIsFixed(t *testing.T) {
	catalog, err := NewCatalog()
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	i, err := catalog.IndexForName("heartbeat")
	if err != nil {
		t.Fatalf("IndexForName(heartbeat): %v", err)
	}
	d := catalog.At(i)
	if d.Size.Variable {
		t.Fatalf("heartbeat descriptor is Variable, want Fixed")
	}
	if d.Size.Total != HeartbeatSize {
		t.Fatalf("heartbeat total = %d, want %d", d.Size.Total, HeartbeatSize)
	}
}
