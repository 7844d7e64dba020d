package statusapi

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/tez-capital/nadam/nadam"
	"github.com/tez-capital/nadam/internal/stats"
)

func testCatalog(t *testing.T) *nadam.Catalog {
	t.Helper()
	catalog, err := nadam.NewCatalog([]nadam.MessageDescriptor{
		{Name: "ping", Size: nadam.Variable(100)},
		{Name: "heartbeat", Size: nadam.Fixed(8)},
	})
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	return catalog
}

func TestCatalogEndpointListsDescriptors(t *testing.T) {
	catalog := testCatalog(t)
	counters := stats.New()
	srv := New(catalog, counters, func() int { return 2 }, func() bool { return true })

	req, _ := http.NewRequest(http.MethodGet, "/catalog", nil)
	resp, err := srv.App.Test(req)
	if err != nil {
		t.Fatalf("App.Test: %v", err)
	}
	defer resp.Body.Close()

	var entries []catalogEntry
	body, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(body, &entries); err != nil {
		t.Fatalf("unmarshal: %v (body=%s)", err, body)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[1].Kind != "fixed" || entries[1].Size != 8 {
		t.Fatalf("heartbeat entry = %+v, want kind=fixed size=8", entries[1])
	}
}

func TestStatusEndpointReportsRunningAndTagLen(t *testing.T) {
	catalog := testCatalog(t)
	counters := stats.New()
	counters.SetTag("ping", "abc")
	srv := New(catalog, counters, func() int { return 3 }, func() bool { return false })

	req, _ := http.NewRequest(http.MethodGet, "/status", nil)
	resp, err := srv.App.Test(req)
	if err != nil {
		t.Fatalf("App.Test: %v", err)
	}
	defer resp.Body.Close()

	var got statusResponse
	body, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("unmarshal: %v (body=%s)", err, body)
	}
	if got.TagLen != 3 {
		t.Fatalf("TagLen = %d, want 3", got.TagLen)
	}
	if got.Running {
		t.Fatalf("Running = true, want false")
	}
	if len(got.Traffic) != 1 || got.Traffic[0].Tag != "abc" {
		t.Fatalf("Traffic = %+v, want one entry tagged abc", got.Traffic)
	}
}
