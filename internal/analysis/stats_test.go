package analysis

import (
	"math"
	"testing"
)

func TestThresholdScore(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		medium   float64
		high     float64
		expected float64
	}{
		{"zero value", 0, 6, 10, 0},
		{"negative value", -3, 6, 10, 0},
		{"at medium", 6, 6, 10, 5},
		{"at high", 10, 6, 10, 10},
		{"beyond high", 50, 6, 10, 10},
		{"halfway below medium", 3, 6, 10, 2.5},
		{"halfway between medium and high", 8, 6, 10, 7.5},
		{"fractional thresholds", 0.15, 0.15, 0.30, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := thresholdScore(tt.value, tt.medium, tt.high)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("thresholdScore(%v, %v, %v) = %v, want %v", tt.value, tt.medium, tt.high, result, tt.expected)
			}
		})
	}
}

func TestThresholdScoreMonotone(t *testing.T) {
	prev := -1.0
	for v := 0.0; v <= 15; v += 0.25 {
		score := thresholdScore(v, 6, 10)
		if score < prev {
			t.Fatalf("thresholdScore not monotone: score(%v) = %v < previous %v", v, score, prev)
		}
		if score < 0 || score > 10 {
			t.Fatalf("thresholdScore(%v) = %v out of range", v, score)
		}
		prev = score
	}
}

func TestClampScore(t *testing.T) {
	tests := []struct {
		in       float64
		expected float64
	}{
		{-1, 0},
		{0, 0},
		{5.5, 5.5},
		{10, 10},
		{12.3, 10},
	}
	for _, tt := range tests {
		if got := clampScore(tt.in); got != tt.expected {
			t.Errorf("clampScore(%v) = %v, want %v", tt.in, got, tt.expected)
		}
	}
}

func TestStddev(t *testing.T) {
	if got := stddev(nil); got != 0 {
		t.Errorf("stddev(nil) = %v, want 0", got)
	}
	if got := stddev([]float64{3}); got != 0 {
		t.Errorf("stddev of single value = %v, want 0", got)
	}

	got := stddev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if math.Abs(got-2.138) > 0.001 {
		t.Errorf("stddev = %v, want 2.138", got)
	}
}

func TestRatioZeroDenominator(t *testing.T) {
	if got := ratio(5, 0); got != 0 {
		t.Errorf("ratio(5, 0) = %v, want 0", got)
	}
	if got := ratio(3, 4); got != 0.75 {
		t.Errorf("ratio(3, 4) = %v, want 0.75", got)
	}
}
