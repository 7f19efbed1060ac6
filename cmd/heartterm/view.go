package main

import (
	"fmt"
	"image/color"
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/decker502/heartbloom/pkg/scenes"
)

const (
	heartRune  = '♥'
	bubbleRune = 'o'

	// 泡泡基础半径（行）；终端字符高约为宽的两倍，列半径取两倍
	bubbleRadiusRows = 2.5
	// HUD 占用的底部行数
	hudRows = 2
)

// termView 把 scenes.Frame 画到 tcell 屏幕上
type termView struct {
	screen  tcell.Screen
	anchorX float64
	anchorY float64
}

func newTermView(screen tcell.Screen, anchorX, anchorY float64) *termView {
	return &termView{screen: screen, anchorX: anchorX, anchorY: anchorY}
}

// fieldSize 可绘制区域（去掉 HUD 行）
func (v *termView) fieldSize() (int, int) {
	w, h := v.screen.Size()
	h -= hudRows
	if h < 1 {
		h = 1
	}
	return w, h
}

// cellToScene 把屏幕格子坐标换算为归一化场景坐标（格子中心）
func (v *termView) cellToScene(x, y int) (float64, float64) {
	w, h := v.fieldSize()
	return (float64(x) + 0.5) / float64(w), (float64(y) + 0.5) / float64(h)
}

// inField 坐标是否落在场景区域内
func (v *termView) inField(x, y int) bool {
	w, h := v.fieldSize()
	return x >= 0 && y >= 0 && x < w && y < h
}

func (v *termView) draw(f scenes.Frame) {
	w, h := v.fieldSize()
	bg := tcellColor(f.Theme.Background)
	base := tcell.StyleDefault.Background(bg)

	v.screen.Fill(' ', base)

	v.drawBubble(f, w, h, base)

	for _, heart := range f.Hearts {
		x := int(heart.X * float64(w))
		y := int(heart.Y * float64(h))
		if x < 0 || y < 0 || x >= w || y >= h {
			continue
		}
		c := f.Theme.Light
		switch {
		case heart.HasTint:
			c = heart.Tint
		case heart.Burst:
			c = f.Theme.Accent
		}
		style := base.Foreground(tcellColor(c))
		if heart.Progress > 0.75 {
			style = style.Dim(true)
		}
		v.screen.SetContent(x, y, heartRune, nil, style)
	}

	v.drawHUD(f, w, h, base)
	v.screen.Show()
}

func (v *termView) drawBubble(f scenes.Frame, w, h int, base tcell.Style) {
	cx := v.anchorX * float64(w)
	cy := v.anchorY * float64(h)
	ry := bubbleRadiusRows * f.BubbleScale * (1 + 0.15*f.AudioLevel)
	rx := ry * 2

	style := base.Foreground(tcellColor(f.Theme.Mid))
	if f.Holding {
		style = style.Bold(true)
	}

	// 按角度采样轮廓，点数随周长增长
	steps := int(math.Max(16, 2*math.Pi*rx))
	for i := 0; i < steps; i++ {
		a := 2 * math.Pi * float64(i) / float64(steps)
		x := int(math.Round(cx + rx*math.Cos(a)))
		y := int(math.Round(cy + ry*math.Sin(a)))
		if x >= 0 && y >= 0 && x < w && y < h {
			v.screen.SetContent(x, y, bubbleRune, nil, style)
		}
	}
}

func (v *termView) drawHUD(f scenes.Frame, w, h int, base tcell.Style) {
	status := fmt.Sprintf("Mood %5.1f  %s", f.Mood, f.Band)
	if f.BloomActive {
		status += fmt.Sprintf("  Bloom #%d (%.1fs)", f.BloomCount, f.CooldownRemaining)
	}
	hint := "hold mouse to inflate · n reflect · q quit"

	accent := base.Foreground(tcellColor(f.Theme.Accent)).Bold(true)
	light := base.Foreground(tcellColor(f.Theme.Light))

	v.drawCentered(f.Theme.Label, 0, w, accent)
	drawText(v.screen, 0, h, status, accent)
	drawText(v.screen, 0, h+1, hint, light)
}

// drawCentered 按显示宽度居中（标签可能含全角字符）
func (v *termView) drawCentered(s string, y, w int, style tcell.Style) {
	x := (w - runewidth.StringWidth(s)) / 2
	if x < 0 {
		x = 0
	}
	drawText(v.screen, x, y, s, style)
}

// drawText 逐字符写入，返回结束列
func drawText(screen tcell.Screen, x, y int, s string, style tcell.Style) int {
	for _, r := range s {
		screen.SetContent(x, y, r, nil, style)
		x += runewidth.RuneWidth(r)
	}
	return x
}

func tcellColor(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
