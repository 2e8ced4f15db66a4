package testutil

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/raysh454/dccdev/internal/slots"
)

// ─── Slots ─────────────────────────────────────────────────────────────

// SampleSlots returns n slots with ids 1..n and distinct deployed builds.
func SampleSlots(n int) []slots.Slot {
	out := make([]slots.Slot, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, slots.Slot{
			ID:          i,
			Name:        fmt.Sprintf("slot-%d", i),
			Description: fmt.Sprintf("Development slot %d", i),
			Directory:   fmt.Sprintf("/srv/dcc/slot%d", i),
			URL:         fmt.Sprintf("https://dev.example.org:%d", 9000+i),
			PR:          100 + i,
			PRTitle:     fmt.Sprintf("Feature %d", i),
			PRAuthor:    "octocat",
			AvatarURL:   "https://avatars.example.org/octocat",
			Branch:      fmt.Sprintf("feature-%d", i),
			CommitID:    fmt.Sprintf("sha%d", i),
			BuildNumber: fmt.Sprintf("%d", 500+i),
		})
	}
	return out
}

// WriteSlotsFile writes a slots document into dir and returns its path.
func WriteSlotsFile(t *testing.T, dir string, ss []slots.Slot) string {
	t.Helper()
	b, err := json.Marshal(map[string]any{"slots": ss})
	if err != nil {
		t.Fatalf("marshal slots: %v", err)
	}
	path := filepath.Join(dir, "slots.json")
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatalf("write slots file: %v", err)
	}
	return path
}
