package analysis

import (
	"math"
	"testing"
)

func TestSegmentContiguity(t *testing.T) {
	sig := makeTwoToneTrack(12)
	energy, err := ExtractEnergy(sig, DefaultEnergyConfig())
	if err != nil {
		t.Fatalf("ExtractEnergy failed: %v", err)
	}

	result, err := Segment(sig, energy, DefaultSegmenterConfig(), DefaultLabelConfig())
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}

	if len(result.Sections) == 0 {
		t.Fatal("expected at least one section")
	}
	if result.Sections[0].Start != 0 {
		t.Errorf("first section starts at %v, want 0", result.Sections[0].Start)
	}
	last := result.Sections[len(result.Sections)-1]
	if math.Abs(last.End-sig.Duration()) > 1e-6 {
		t.Errorf("last section ends at %v, want %v", last.End, sig.Duration())
	}
	for i := 0; i+1 < len(result.Sections); i++ {
		if result.Sections[i].End != result.Sections[i+1].Start {
			t.Errorf("gap between section %d end (%v) and section %d start (%v)",
				i, result.Sections[i].End, i+1, result.Sections[i+1].Start)
		}
	}
	for i, s := range result.Sections {
		if s.End <= s.Start {
			t.Errorf("section %d has end %v <= start %v", i, s.End, s.Start)
		}
		if math.Abs(s.Duration-(s.End-s.Start)) > 1e-9 {
			t.Errorf("section %d duration %v != end-start", i, s.Duration)
		}
	}
}

func TestSegmentDetectsTimbreChange(t *testing.T) {
	sig := makeTwoToneTrack(12)
	energy, err := ExtractEnergy(sig, DefaultEnergyConfig())
	if err != nil {
		t.Fatalf("ExtractEnergy failed: %v", err)
	}

	result, err := Segment(sig, energy, DefaultSegmenterConfig(), DefaultLabelConfig())
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}

	// One sharp timbre change at the midpoint: expect an interior boundary
	// within a couple of seconds of 6.0.
	if len(result.Boundaries) < 3 {
		t.Fatalf("boundaries = %v, want an interior change point", result.Boundaries)
	}
	found := false
	for _, b := range result.Boundaries[1 : len(result.Boundaries)-1] {
		if math.Abs(b-6) < 2 {
			found = true
		}
	}
	if !found {
		t.Errorf("no boundary near 6 s in %v", result.Boundaries)
	}
}

func TestSegmentHomogeneousSingleSection(t *testing.T) {
	sig := makeTone(440, 8)
	energy, err := ExtractEnergy(sig, DefaultEnergyConfig())
	if err != nil {
		t.Fatalf("ExtractEnergy failed: %v", err)
	}

	result, err := Segment(sig, energy, DefaultSegmenterConfig(), DefaultLabelConfig())
	if err != nil {
		t.Fatalf("Segment failed: %v", err)
	}
	if len(result.Sections) != 1 {
		t.Fatalf("section count = %d, want 1 for a homogeneous tone", len(result.Sections))
	}
	if result.Sections[0].Label == "" {
		t.Error("single section left unlabeled")
	}
}

func TestLabelSectionsQuartileHeuristic(t *testing.T) {
	// The canonical three-section case: a loud middle between two quiet ends.
	sections := []Section{
		{Start: 0, End: 60, Duration: 60, Energy: 0.05},
		{Start: 60, End: 120, Duration: 60, Energy: 0.85},
		{Start: 120, End: 180, Duration: 60, Energy: 0.05},
	}
	labelSections(sections, DefaultLabelConfig())

	want := []string{"intro", "chorus", "outro"}
	for i, s := range sections {
		if s.Label != want[i] {
			t.Errorf("section %d label = %q, want %q", i, s.Label, want[i])
		}
	}
}

func TestLabelSectionsBuckets(t *testing.T) {
	// Sorted energies are [0.1, 0.2, 0.4, 0.85, 0.9]: the nearest-rank
	// thresholds are 0.85 (q75) and 0.2 (q25).
	sections := []Section{
		{Duration: 30, Energy: 0.1},
		{Duration: 30, Energy: 0.2},  // bottom quartile
		{Duration: 30, Energy: 0.4},  // mid bucket
		{Duration: 30, Energy: 0.9},  // top quartile
		{Duration: 30, Energy: 0.85},
	}
	labelSections(sections, DefaultLabelConfig())

	if sections[0].Label != "intro" || sections[4].Label != "outro" {
		t.Errorf("edges labeled %q/%q, want intro/outro", sections[0].Label, sections[4].Label)
	}
	if sections[3].Label != "chorus" {
		t.Errorf("high-energy section labeled %q, want chorus", sections[3].Label)
	}
	if sections[1].Label != "verse" {
		t.Errorf("low-energy section labeled %q, want verse", sections[1].Label)
	}
	if sections[2].Label != DefaultLabelConfig().MidLabel {
		t.Errorf("mid-energy section labeled %q, want %q", sections[2].Label, DefaultLabelConfig().MidLabel)
	}
}

func TestLabelSingleSection(t *testing.T) {
	cfg := DefaultLabelConfig()

	short := []Section{{Start: 0, End: 5, Duration: 5, Energy: 0.4}}
	labelSections(short, cfg)
	if short[0].Label != "intro" {
		t.Errorf("short single section labeled %q, want intro", short[0].Label)
	}

	long := []Section{{Start: 0, End: 120, Duration: 120, Energy: 0.4}}
	labelSections(long, cfg)
	// With one section the distribution is degenerate: it sits in the top
	// bucket, and the chorus branch is checked first.
	if long[0].Label != "chorus" {
		t.Errorf("long single section labeled %q, want chorus", long[0].Label)
	}
}

func TestQuantileNearestRank(t *testing.T) {
	sorted := []float64{0.05, 0.05, 0.85}
	if got := quantileNearestRank(sorted, 0.75); got != 0.85 {
		t.Errorf("q75 = %v, want 0.85", got)
	}
	if got := quantileNearestRank(sorted, 0.25); got != 0.05 {
		t.Errorf("q25 = %v, want 0.05", got)
	}
	if got := quantileNearestRank(nil, 0.5); got != 0 {
		t.Errorf("empty quantile = %v, want 0", got)
	}
}
