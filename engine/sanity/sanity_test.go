package sanity

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/nathoo/blackwood/types"
)

var testTiers = types.SanityTiers{Medium: 60, Low: 30, Critical: 10}

// seeded is a Source backed by math/rand.
type seeded struct{ r *rand.Rand }

func newSeeded(seed int64) *seeded { return &seeded{r: rand.New(rand.NewSource(seed))} }

func (s *seeded) Float64() float64 { return s.r.Float64() }
func (s *seeded) Intn(n int) int   { return s.r.Intn(n) }

// counting records how many draws were taken.
type counting struct {
	inner Source
	n     int
}

func (c *counting) Float64() float64 {
	c.n++
	return c.inner.Float64()
}

func (c *counting) Intn(n int) int {
	c.n++
	return c.inner.Intn(n)
}

// constant always draws v.
type constant float64

func (c constant) Float64() float64 { return float64(c) }
func (c constant) Intn(int) int     { return 0 }

const sample = "The old house is quiet. Dust settles on the piano keys! A cold draft slips under the door, and the shadows lengthen in the room?"

func TestTierOf(t *testing.T) {
	tests := []struct {
		sanity int
		want   Tier
	}{
		{100, High},
		{61, High},
		{60, Medium},
		{31, Medium},
		{30, Low},
		{11, Low},
		{10, Critical},
		{0, Critical},
	}
	for _, tt := range tests {
		if got := TierOf(tt.sanity, testTiers); got != tt.want {
			t.Errorf("TierOf(%d) = %v, want %v", tt.sanity, got, tt.want)
		}
	}
}

func TestFilter_HighUnchanged(t *testing.T) {
	c := &counting{inner: newSeeded(1)}
	if got := Filter(sample, 80, testTiers, c); got != sample {
		t.Errorf("High tier changed text: %q", got)
	}
	if c.n != 0 {
		t.Errorf("High tier drew %d values, want 0", c.n)
	}
}

func TestFilter_Deterministic(t *testing.T) {
	for _, sanity := range []int{55, 25, 5} {
		a := Filter(sample, sanity, testTiers, newSeeded(7))
		b := Filter(sample, sanity, testTiers, newSeeded(7))
		if a != b {
			t.Errorf("sanity %d: same seed gave %q and %q", sanity, a, b)
		}
	}
}

func TestFilter_DrawCountIndependentOfSanity(t *testing.T) {
	var counts []int
	for _, sanity := range []int{60, 45, 30, 10, 0} {
		c := &counting{inner: newSeeded(3)}
		Filter(sample, sanity, testTiers, c)
		counts = append(counts, c.n)
	}
	for i := 1; i < len(counts); i++ {
		if counts[i] != counts[0] {
			t.Fatalf("draw counts differ across sanity: %v", counts)
		}
	}
}

func TestFilter_MonotoneLength(t *testing.T) {
	for seed := int64(0); seed < 25; seed++ {
		prev := len(sample)
		for sanity := 60; sanity >= 0; sanity -= 5 {
			out := Filter(sample, sanity, testTiers, newSeeded(seed))
			if len(out) < prev {
				t.Fatalf("seed %d sanity %d: length %d shrank below %d", seed, sanity, len(out), prev)
			}
			prev = len(out)
		}
	}
}

func TestFilter_NeverShorter(t *testing.T) {
	for seed := int64(0); seed < 25; seed++ {
		for _, sanity := range []int{50, 20, 3} {
			out := Filter(sample, sanity, testTiers, newSeeded(seed))
			if len(out) < len(sample) {
				t.Fatalf("seed %d sanity %d: output shorter than input", seed, sanity)
			}
		}
	}
}

func TestFilter_AllDistorted(t *testing.T) {
	// A draw of 0 distorts every word and triggers every intrusion.
	got := Filter("The old Door creaks.", 0, testTiers, constant(0))
	want := "T-The ancient Mouth c-creaks. ...they're watching..."
	if got != want {
		t.Errorf("Filter = %q, want %q", got, want)
	}
}

func TestFilter_MediumOnlyCorrupts(t *testing.T) {
	got := Filter("The old door creaks.", 50, testTiers, constant(0))
	want := "The ancient mouth creaks."
	if got != want {
		t.Errorf("Filter = %q, want %q", got, want)
	}
}

func TestFilter_PreservesWhitespace(t *testing.T) {
	in := "cold\n\n  dust"
	got := Filter(in, 50, testTiers, constant(0))
	if got != "dead\n\n  ashes" {
		t.Errorf("Filter = %q", got)
	}
	if strings.Count(got, "\n") != 2 {
		t.Error("newlines lost")
	}
}

func TestIntensity(t *testing.T) {
	if Intensity(61, testTiers) != 0 {
		t.Error("High tier must have zero intensity")
	}
	if got := Intensity(60, testTiers); got != 0.15 {
		t.Errorf("Intensity(60) = %v, want 0.15", got)
	}
	if Intensity(10, testTiers) >= Intensity(0, testTiers) {
		t.Error("intensity must grow as sanity falls")
	}
}
