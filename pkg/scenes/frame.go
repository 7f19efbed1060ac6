package scenes

import (
	"slices"

	"github.com/decker502/heartbloom/pkg/systems"
)

// Frame 是场景每个 tick 交给渲染器的只读数据
//
// 切片字段都是副本，渲染器修改它们不会影响场景状态。
type Frame struct {
	Now   float64
	Mood  float64
	Band  string
	Theme systems.ThemeColors

	Hearts []systems.HeartView

	BubbleScale float64
	Holding     bool

	// BloomActive 冷却期内为 true；BloomFired 仅在触发绽放的那一帧为 true
	BloomActive       bool
	BloomFired        bool
	BloomCount        int
	CooldownRemaining float64

	// Pops 本帧处理的泡泡破裂事件（用于提示音等）
	Pops []systems.PopEvent

	// AudioLevel 最近一次音频帧的平均幅度 [0,1]
	AudioLevel float64

	Pointer    systems.Point
	HasPointer bool
}

func (f Frame) clone() Frame {
	f.Hearts = slices.Clone(f.Hearts)
	f.Pops = slices.Clone(f.Pops)
	return f
}
