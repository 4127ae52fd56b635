package version

import "testing"

func TestInfo_Service(t *testing.T) {
	prev := service
	t.Cleanup(func() { service = prev })

	if Info().Service != "hansard-api" {
		t.Fatalf("default service = %q", Info().Service)
	}
	SetService("hansard-ingest")
	SetService("")
	if got := Info(); got.Service != "hansard-ingest" || got.Version == "" {
		t.Fatalf("info = %+v", got)
	}
}
