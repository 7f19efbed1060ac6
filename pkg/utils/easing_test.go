package utils

import (
	"math"
	"testing"
)

// TestEaseOutCubic 测试三次方缓出函数
func TestEaseOutCubic(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"起点", 0.0, 0.0},
		{"终点", 1.0, 1.0},
		{"中点", 0.5, 0.875}, // 1 - (1-0.5)^3
		{"越界截断", 2.0, 1.0},
		{"负数截断", -1.0, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := EaseOutCubic(tt.input)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("EaseOutCubic(%v) = %v, 期望 %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestLerp(t *testing.T) {
	if got := Lerp(10, 20, 0.25); got != 12.5 {
		t.Errorf("Lerp(10,20,0.25) = %v, 期望 12.5", got)
	}
}

// TestHeartAlpha 淡入后单调淡出，终点完全透明
func TestHeartAlpha(t *testing.T) {
	if HeartAlpha(0) != 0 {
		t.Errorf("出生时透明度应为 0，得到 %v", HeartAlpha(0))
	}
	if a := HeartAlpha(0.1); math.Abs(a-0.99) > 0.001 {
		t.Errorf("淡入结束时透明度 = %v, 期望约 0.99", a)
	}
	if HeartAlpha(1) != 0 {
		t.Errorf("寿命结束时透明度应为 0，得到 %v", HeartAlpha(1))
	}

	prev := HeartAlpha(0.1)
	for p := 0.15; p <= 1.0; p += 0.05 {
		a := HeartAlpha(p)
		if a > prev+1e-12 {
			t.Errorf("HeartAlpha 在 %.2f 处上升: %v > %v", p, a, prev)
		}
		prev = a
	}
}

func TestHeartScale(t *testing.T) {
	if got := HeartScale(0); math.Abs(got-0.6) > 1e-9 {
		t.Errorf("HeartScale(0) = %v, 期望 0.6", got)
	}
	if got := HeartScale(0.5); got != 1 {
		t.Errorf("HeartScale(0.5) = %v, 期望 1", got)
	}
}

func TestPulse(t *testing.T) {
	tests := []struct {
		now, period, want float64
	}{
		{0, 2, 0},
		{1, 2, 1},
		{2, 2, 0},
		{1, 0, 0}, // 无效周期
	}
	for _, tt := range tests {
		if got := Pulse(tt.now, tt.period); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Pulse(%v,%v) = %v, 期望 %v", tt.now, tt.period, got, tt.want)
		}
	}
}
