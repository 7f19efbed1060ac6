package components

import "image/color"

// HeartComponent represents one visual heart unit owned by the heart particle system.
//
// This is a pure data component - the particle system reads and writes it,
// renderers only ever see copies (systems.HeartView).
type HeartComponent struct {
	// Size 心形尺寸(像素, 以 1.0 缩放为基准)
	Size float64

	// Tint 可选的颜色覆盖，nil 表示使用主题粒子色
	Tint *color.RGBA

	// Burst 为 true 表示由爆发(气泡破裂/绽放)生成，false 表示环境漂浮粒子
	Burst bool
}
