package app

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/mattn/go-runewidth"

	"github.com/decker502/heartbloom/pkg/game"
	"github.com/decker502/heartbloom/pkg/scenes"
	"github.com/decker502/heartbloom/pkg/systems"
	"github.com/decker502/heartbloom/pkg/utils"
)

const (
	bubbleBaseRadius = 56.0
	// 音频强度让泡泡额外放大的比例
	bubbleAudioGain = 0.12
	// 调试字体下一行大约能放下的列数
	lastNoteWidth = 96
)

func drawFrame(screen *ebiten.Image, a *App, f scenes.Frame) {
	screen.Fill(f.Theme.Background)

	cfg := a.scene.Config()
	if f.BloomActive {
		drawBloomGlow(screen, f, cfg.Bloom.CooldownSeconds)
	}
	drawBubble(screen, f, cfg.Bubble.AnchorX, cfg.Bubble.AnchorY)
	drawHearts(screen, a, f)
	if a.prefs.Settings().ShowHUD {
		drawHUD(screen, f, a.lastNote.Load())
	}
}

// drawBloomGlow 绽放冷却期内叠加一层逐渐消退的粒子色
func drawBloomGlow(screen *ebiten.Image, f scenes.Frame, cooldown float64) {
	strength := 0.0
	if cooldown > 0 {
		strength = utils.EaseInQuad(f.CooldownRemaining / cooldown)
	}
	glow := withAlpha(f.Theme.Accent, 0.25*strength)
	vector.DrawFilledRect(screen, 0, 0, ScreenWidth, ScreenHeight, glow, false)
}

func drawBubble(screen *ebiten.Image, f scenes.Frame, anchorX, anchorY float64) {
	cx := float32(anchorX * ScreenWidth)
	cy := float32(anchorY * ScreenHeight)

	radius := bubbleBaseRadius * f.BubbleScale * (1 + bubbleAudioGain*f.AudioLevel)
	if !f.Holding {
		// 空闲时轻微呼吸
		radius *= 1 + 0.03*utils.Pulse(f.Now, 2.4)
	}

	vector.DrawFilledCircle(screen, cx, cy, float32(radius), withAlpha(f.Theme.Mid, 0.85), true)
	// 高光
	vector.DrawFilledCircle(screen, cx-float32(radius*0.35), cy-float32(radius*0.35),
		float32(radius*0.22), withAlpha(f.Theme.Light, 0.7), true)
}

func drawHearts(screen *ebiten.Image, a *App, f scenes.Frame) {
	if len(f.Hearts) == 0 {
		return
	}

	a.vertices = a.vertices[:0]
	a.indices = a.indices[:0]

	for _, h := range f.Hearts {
		c := heartColor(h, f.Theme)
		alpha := float32(utils.HeartAlpha(h.Progress))
		size := float32(h.Size * utils.HeartScale(h.Progress))

		a.vertices, a.indices = utils.AppendHeart(a.vertices, a.indices, a.heartOutline,
			float32(h.X*ScreenWidth), float32(h.Y*ScreenHeight), size,
			float32(c.R)/255, float32(c.G)/255, float32(c.B)/255, alpha,
			1, 1)
	}

	op := &ebiten.DrawTrianglesOptions{}
	op.AntiAlias = true
	screen.DrawTriangles(a.vertices, a.indices, a.whiteImage(), op)
}

// heartColor 环境粒子用浅色，爆发粒子用粒子色，显式着色优先
func heartColor(h systems.HeartView, theme systems.ThemeColors) color.RGBA {
	switch {
	case h.HasTint:
		return h.Tint
	case h.Burst:
		return theme.Accent
	default:
		return theme.Light
	}
}

func drawHUD(screen *ebiten.Image, f scenes.Frame, last *game.Note) {
	hint := "Hold mouse / space to inflate, N to reflect, M music, +/- volume, H hides this, Esc to quit"
	if utils.IsMobile() {
		hint = "Touch and hold the bubble"
	}

	lines := []string{
		fmt.Sprintf("Mood %5.1f  %s", f.Mood, f.Band),
		f.Theme.Label,
		hint,
	}
	if f.BloomActive {
		lines = append(lines, fmt.Sprintf("Bloom #%d  cooldown %.1fs", f.BloomCount, f.CooldownRemaining))
	}
	if last != nil {
		lines = append(lines, lastNoteLine(*last))
	}
	for i, line := range lines {
		ebitenutil.DebugPrintAt(screen, line, 10, 10+i*16)
	}
}

// lastNoteLine HUD 上的最近随笔，过长时按显示宽度截断
func lastNoteLine(n game.Note) string {
	return runewidth.Truncate("Last: "+n.Text, lastNoteWidth, "...")
}

func withAlpha(c color.RGBA, alpha float64) color.RGBA {
	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}
	// color.RGBA 是预乘 alpha
	return color.RGBA{
		R: uint8(float64(c.R) * alpha),
		G: uint8(float64(c.G) * alpha),
		B: uint8(float64(c.B) * alpha),
		A: uint8(255 * alpha),
	}
}
