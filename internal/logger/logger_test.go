package logger

import "testing"

func TestSanitizeKVs(t *testing.T) {
	got := sanitizeKVs([]interface{}{"email", "a@b.c", "password", "hunter2", "JWT_Token", "x.y.z", "dangling"})
	want := []interface{}{"email", "a@b.c", "password", "[REDACTED]", "JWT_Token", "[REDACTED]", "dangling"}
	if len(got) != len(want) {
		t.Fatalf("sanitizeKVs len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sanitizeKVs[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestNop(t *testing.T) {
	log := Nop().With("component", "test")
	log.Info("discarded", "n", 1)
	log.Warn("discarded", "password", "x")
	log.Sync()
}
