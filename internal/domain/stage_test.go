package domain

import "testing"

func TestStageModeClass(t *testing.T) {
	tests := []struct {
		mode StageMode
		want StageClass
	}{
		{StageModeLight, StageClassLight},
		{StageModeDeep, StageClassDeep},
		{StageModeREMShort, StageClassREM},
		{StageModeREMLong, StageClassREM},
		{StageMode(0), StageClassUnknown},
		{StageMode(6), StageClassUnknown},
		{StageMode(99), StageClassUnknown},
	}

	for _, tt := range tests {
		if got := tt.mode.Class(); got != tt.want {
			t.Errorf("mode %d classified as %q, want %q", tt.mode, got, tt.want)
		}
	}
}

func TestStageRecordDuration(t *testing.T) {
	s := StageRecord{Mode: StageModeDeep, StartOffset: 10, StopOffset: 40}
	if got := s.Duration(); got != 30 {
		t.Fatalf("Duration = %d, want 30", got)
	}
	if s.Inverted() {
		t.Fatal("well-formed stage reported as inverted")
	}

	// Inverted intervals clamp to zero, never go negative.
	inv := StageRecord{Mode: StageModeDeep, StartOffset: 50, StopOffset: 10}
	if got := inv.Duration(); got != 0 {
		t.Fatalf("inverted Duration = %d, want 0", got)
	}
	if !inv.Inverted() {
		t.Fatal("inverted stage not reported as inverted")
	}
}
