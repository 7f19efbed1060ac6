// Package utils 提供渲染端的通用工具：输入采样、缓动曲线、心形网格和平台检测
package utils

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// PointerSample 一帧的指针采样
type PointerSample struct {
	X, Y    int
	Pressed bool
	// Touch 为 true 表示来自触摸；触摸没有"离开窗口"的概念
	Touch bool
	// Inside 指针是否在逻辑屏幕内
	Inside bool
}

// SamplePointer 读取当前帧的指针状态
//
// 优先检测触摸，其次鼠标；空格键也视为按住。
func SamplePointer(width, height int) PointerSample {
	touchIDs := ebiten.AppendTouchIDs(nil)
	if len(touchIDs) > 0 {
		x, y := ebiten.TouchPosition(touchIDs[0])
		return PointerSample{X: x, Y: y, Pressed: true, Touch: true, Inside: true}
	}

	x, y := ebiten.CursorPosition()
	pressed := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) || ebiten.IsKeyPressed(ebiten.KeySpace)
	return PointerSample{
		X:       x,
		Y:       y,
		Pressed: pressed,
		Inside:  x >= 0 && y >= 0 && x < width && y < height,
	}
}

// NormalizePoint 屏幕坐标转为 [0,1] 归一化坐标
func NormalizePoint(x, y, width, height int) (float64, float64) {
	if width <= 0 || height <= 0 {
		return 0, 0
	}
	return float64(x) / float64(width), float64(y) / float64(height)
}

// HoldEvent 按住手势的状态变化
type HoldEvent int

const (
	// HoldNone 无变化
	HoldNone HoldEvent = iota
	// HoldBegan 开始按住
	HoldBegan
	// HoldEnded 松开
	HoldEnded
	// HoldCancelled 按住时鼠标离开窗口
	HoldCancelled
)

// HoldTracker 把逐帧指针采样转换为按住手势事件
type HoldTracker struct {
	holding bool
}

// Feed 输入一帧采样，返回本帧产生的事件
func (h *HoldTracker) Feed(s PointerSample) HoldEvent {
	switch {
	case !h.holding && s.Pressed && s.Inside:
		h.holding = true
		return HoldBegan
	case h.holding && !s.Pressed:
		h.holding = false
		return HoldEnded
	case h.holding && !s.Inside && !s.Touch:
		h.holding = false
		return HoldCancelled
	}
	return HoldNone
}

// Holding 当前是否处于按住状态
func (h *HoldTracker) Holding() bool {
	return h.holding
}
