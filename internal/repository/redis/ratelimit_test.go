package redis

import (
	"testing"
	"time"
)

func TestWindowKey(t *testing.T) {
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	a := windowKey("ip", time.Minute, base.Add(5*time.Second))
	b := windowKey("ip", time.Minute, base.Add(59*time.Second))
	c := windowKey("ip", time.Minute, base.Add(61*time.Second))

	if a != b {
		t.Errorf("same window should share a key: %s vs %s", a, b)
	}
	if a == c {
		t.Errorf("next window should use a new key: %s", c)
	}
	if windowKey("other", time.Minute, base) == windowKey("ip", time.Minute, base) {
		t.Error("different keys should not collide")
	}
}
