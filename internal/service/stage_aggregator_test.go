package service

import (
	"testing"

	"github.com/blaisecz/zepp-sleep-report/internal/domain"
)

func TestAggregateStages(t *testing.T) {
	tests := []struct {
		name   string
		stages []domain.StageRecord
		want   domain.StageTotals
	}{
		{
			name: "rem is the sum of both rem variants",
			stages: []domain.StageRecord{
				{Mode: domain.StageModeREMShort, StartOffset: 0, StopOffset: 10},
				{Mode: domain.StageModeREMLong, StartOffset: 20, StopOffset: 50},
			},
			want: domain.StageTotals{REMMinutes: 40},
		},
		{
			name: "categories partition by mode",
			stages: []domain.StageRecord{
				{Mode: domain.StageModeDeep, StartOffset: 0, StopOffset: 45},
				{Mode: domain.StageModeDeep, StartOffset: 200, StopOffset: 245},
				{Mode: domain.StageModeLight, StartOffset: 45, StopOffset: 180},
				{Mode: domain.StageModeREMShort, StartOffset: 180, StopOffset: 200},
			},
			want: domain.StageTotals{DeepMinutes: 90, LightMinutes: 135, REMMinutes: 20},
		},
		{
			name: "inverted interval clamps to zero",
			stages: []domain.StageRecord{
				{Mode: domain.StageModeDeep, StartOffset: 50, StopOffset: 10},
				{Mode: domain.StageModeDeep, StartOffset: 60, StopOffset: 90},
			},
			want: domain.StageTotals{DeepMinutes: 30, ClampedCount: 1},
		},
		{
			name: "unknown modes counted but not totaled",
			stages: []domain.StageRecord{
				{Mode: domain.StageMode(6), StartOffset: 0, StopOffset: 100},
				{Mode: domain.StageMode(9), StartOffset: 100, StopOffset: 130},
				{Mode: domain.StageModeLight, StartOffset: 130, StopOffset: 140},
			},
			want: domain.StageTotals{LightMinutes: 10, UnknownModeCount: 2},
		},
		{
			name: "overlapping intervals double count by design",
			stages: []domain.StageRecord{
				{Mode: domain.StageModeREMLong, StartOffset: 0, StopOffset: 30},
				{Mode: domain.StageModeREMLong, StartOffset: 10, StopOffset: 40},
			},
			want: domain.StageTotals{REMMinutes: 60},
		},
		{
			name:   "empty input",
			stages: nil,
			want:   domain.StageTotals{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AggregateStages(tt.stages)
			if got != tt.want {
				t.Fatalf("AggregateStages = %+v, want %+v", got, tt.want)
			}
		})
	}
}
