package app

import (
	"image/color"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"

	"github.com/decker502/heartbloom/pkg/game"
	"github.com/decker502/heartbloom/pkg/systems"
)

func TestHeartColor(t *testing.T) {
	theme := systems.ThemeColors{
		Light:  color.RGBA{R: 1, A: 255},
		Accent: color.RGBA{R: 2, A: 255},
	}
	tint := color.RGBA{R: 3, A: 255}

	tests := []struct {
		name  string
		heart systems.HeartView
		want  color.RGBA
	}{
		{"环境粒子", systems.HeartView{}, theme.Light},
		{"爆发粒子", systems.HeartView{Burst: true}, theme.Accent},
		{"显式着色优先", systems.HeartView{Burst: true, Tint: tint, HasTint: true}, tint},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := heartColor(tt.heart, theme); got != tt.want {
				t.Errorf("heartColor = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestWithAlphaPremultiplies(t *testing.T) {
	c := color.RGBA{R: 200, G: 100, B: 50, A: 255}

	half := withAlpha(c, 0.5)
	if half != (color.RGBA{R: 100, G: 50, B: 25, A: 127}) {
		t.Errorf("withAlpha(0.5) = %+v", half)
	}
	if got := withAlpha(c, 2); got != c {
		t.Errorf("alpha > 1 should clamp to opaque, got %+v", got)
	}
	if got := withAlpha(c, -1); got != (color.RGBA{}) {
		t.Errorf("alpha < 0 should clamp to transparent, got %+v", got)
	}
}

func TestLastNoteLine(t *testing.T) {
	long := strings.Repeat("love ", 40)
	tests := []struct {
		name string
		text string
		want string
	}{
		{"短句原样", "You are loved.", "Last: You are loved."},
		{"长句截断", long, runewidth.Truncate("Last: "+long, lastNoteWidth, "...")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lastNoteLine(game.Note{Text: tt.text})
			if got != tt.want {
				t.Errorf("lastNoteLine = %q, want %q", got, tt.want)
			}
			if w := runewidth.StringWidth(got); w > lastNoteWidth {
				t.Errorf("width = %d, want <= %d", w, lastNoteWidth)
			}
		})
	}
}
