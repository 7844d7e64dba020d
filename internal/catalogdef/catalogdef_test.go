package catalogdef

import (
	"bytes"
	"errors"
	"testing"
)

func TestResolveRejectsEmpty(t *testing.T) {
	if _, err := Resolve(nil); !errors.Is(err, ErrEmptyCatalog) {
		t.Fatalf("Resolve(nil) = %v, want ErrEmptyCatalog", err)
	}
}

func TestResolveRejectsZeroSizes(t *testing.T) {
	zero := uint32(0)
	if _, err := Resolve([]Spec{{Name: "a", Total: &zero}}); !errors.Is(err, ErrZeroFixedSize) {
		t.Fatalf("Resolve(total=0) = %v, want ErrZeroFixedSize", err)
	}
	if _, err := Resolve([]Spec{{Name: "a", Max: &zero}}); !errors.Is(err, ErrZeroVariableSize) {
		t.Fatalf("Resolve(max=0) = %v, want ErrZeroVariableSize", err)
	}
}

func TestResolveRejectsDuplicateName(t *testing.T) {
	_, err := Resolve([]Spec{Fixed("a", 4), Fixed("a", 8)})
	if !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("Resolve(dup) = %v, want ErrDuplicateName", err)
	}
}

func TestResolveRejectsAmbiguousSizeKind(t *testing.T) {
	n := uint32(4)
	_, err := Resolve([]Spec{{Name: "a", Total: &n, Max: &n}})
	if !errors.Is(err, ErrAmbiguousSizeKind) {
		t.Fatalf("Resolve(both) = %v, want ErrAmbiguousSizeKind", err)
	}
	_, err = Resolve([]Spec{{Name: "a"}})
	if !errors.Is(err, ErrAmbiguousSizeKind) {
		t.Fatalf("Resolve(neither) = %v, want ErrAmbiguousSizeKind", err)
	}
}

func TestHashNameIsStableAndDistinct(t *testing.T) {
	h1 := HashName("ping")
	h2 := HashName("ping")
	if h1 != h2 {
		t.Fatalf("HashName(ping) is not stable across calls")
	}
	if h1 == HashName("pong") {
		t.Fatalf("HashName(ping) == HashName(pong), want distinct hashes")
	}
}

func TestManifestRoundTrip(t *testing.T) {
	descs, err := Resolve([]Spec{Fixed("heartbeat", 8), Variable("ping", 100)})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteManifest(&buf, descs); err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}

	got, err := ReadManifest(&buf)
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if len(got) != len(descs) {
		t.Fatalf("ReadManifest returned %d descriptors, want %d", len(got), len(descs))
	}
	for i := range descs {
		if got[i] != descs[i] {
			t.Fatalf("descriptor %d = %+v, want %+v", i, got[i], descs[i])
		}
	}
}

func TestGenerateSourceProducesValidGo(t *testing.T) {
	descs, err := Resolve([]Spec{Fixed("heartbeat", 8)})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	src, err := GenerateSource("demo", descs)
	if err != nil {
		t.Fatalf("GenerateSource: %v", err)
	}
	if !bytes.Contains(src, []byte("package demo")) {
		t.Fatalf("generated source missing package clause:\n%s", src)
	}
	if !bytes.Contains(src, []byte(`"heartbeat"`)) {
		t.Fatalf("generated source missing message name:\n%s", src)
	}
}
