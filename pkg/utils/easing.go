package utils

import "math"

// 缓动函数
//
// 渲染器用于粒子淡出、泡泡脉动等视觉曲线。
// 输入 t ∈ [0, 1]，越界时先截断。

// EaseOutCubic 三次方缓出：开始快，结束慢
// 公式：f(t) = 1 - (1-t)³
func EaseOutCubic(t float64) float64 {
	t = clampProgress(t)
	return 1 - math.Pow(1-t, 3)
}

// EaseInQuad 二次方缓入：开始慢，结束快
func EaseInQuad(t float64) float64 {
	t = clampProgress(t)
	return t * t
}

// Lerp 线性插值，t=0 返回 a，t=1 返回 b
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// HeartAlpha 粒子透明度：出生时短暂淡入，后半段加速淡出
func HeartAlpha(progress float64) float64 {
	progress = clampProgress(progress)
	fadeIn := EaseOutCubic(progress / 0.1)
	fadeOut := 1 - EaseInQuad(progress)
	return fadeIn * fadeOut
}

// HeartScale 粒子出生时从 60% 弹出到原始大小
func HeartScale(progress float64) float64 {
	return Lerp(0.6, 1, EaseOutCubic(progress/0.15))
}

// Pulse 周期为 period 秒的 [0,1] 正弦脉动
func Pulse(now, period float64) float64 {
	if period <= 0 {
		return 0
	}
	return 0.5 - 0.5*math.Cos(2*math.Pi*now/period)
}

func clampProgress(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
