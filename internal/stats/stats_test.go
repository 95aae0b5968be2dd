package stats

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestStdDev(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}

	if got := PopulationStdDev(values); !almostEqual(got, 2) {
		t.Errorf("PopulationStdDev = %v, want 2", got)
	}
	if got := SampleStdDev(values); !almostEqual(got, math.Sqrt(32.0/7.0)) {
		t.Errorf("SampleStdDev = %v, want %v", got, math.Sqrt(32.0/7.0))
	}
	if got := SampleStdDev([]float64{3}); got != 0 {
		t.Errorf("SampleStdDev of one value = %v, want 0", got)
	}
	if got := PopulationStdDev(nil); got != 0 {
		t.Errorf("PopulationStdDev of empty = %v, want 0", got)
	}
}

func TestMode(t *testing.T) {
	tests := []struct {
		name   string
		values []int
		want   int
		wantOK bool
	}{
		{name: "single winner", values: []int{7, 8, 8, 9}, want: 8, wantOK: true},
		{name: "tie goes to first occurrence", values: []int{9, 7, 7, 9}, want: 9, wantOK: true},
		{name: "all distinct", values: []int{5, 3, 1}, want: 5, wantOK: true},
		{name: "empty", values: nil, want: 0, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Mode(tt.values)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Mode(%v) = (%d, %v), want (%d, %v)", tt.values, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestCenteredRollingMean(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}
	got := CenteredRollingMean(values, 7)

	// Edge windows are clipped: position 0 averages values[0:4].
	want := []float64{2.5, 3, 3.5, 4, 5, 6, 6.5, 7, 7.5}
	for i := range want {
		if !almostEqual(got[i], want[i]) {
			t.Errorf("position %d: got %v, want %v", i, got[i], want[i])
		}
	}

	for _, v := range CenteredRollingMean(values, 0) {
		if !math.IsNaN(v) {
			t.Errorf("expected NaN for zero window, got %v", v)
		}
	}
}

func TestOLSSlope(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
		wantOK bool
	}{
		{name: "increasing", values: []float64{1, 2, 3, 4, 5}, want: 1, wantOK: true},
		{name: "flat", values: []float64{5, 5, 5}, want: 0, wantOK: true},
		{name: "decreasing", values: []float64{6, 4, 2}, want: -2, wantOK: true},
		{name: "single point", values: []float64{3}, want: 0, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := OLSSlope(tt.values)
			if ok != tt.wantOK || !almostEqual(got, tt.want) {
				t.Errorf("OLSSlope(%v) = (%v, %v), want (%v, %v)", tt.values, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
