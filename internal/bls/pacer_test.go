package bls

import (
	"testing"
	"time"
)

func TestPacerSpacesCalls(t *testing.T) {
	p := newPacer(100) // 10ms between calls

	start := time.Now()
	for i := 0; i < 3; i++ {
		p.wait()
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Fatalf("three calls took %v, want at least 20ms", elapsed)
	}
}

func TestPacerDefaultsToOnePerSecond(t *testing.T) {
	if p := newPacer(0); p.gap != time.Second {
		t.Fatalf("gap = %v, want 1s", p.gap)
	}
	if p := newPacer(-5); p.gap != time.Second {
		t.Fatalf("gap = %v, want 1s", p.gap)
	}
}
