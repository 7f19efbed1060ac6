package systems

import (
	"log"
	"math"

	"github.com/decker502/heartbloom/pkg/config"
)

// BubbleState 气泡交互状态
type BubbleState int

const (
	// BubbleIdle 未按住
	BubbleIdle BubbleState = iota
	// BubbleHolding 按住中，气泡每帧膨胀
	BubbleHolding
)

// String 返回状态名称（用于日志）
func (s BubbleState) String() string {
	switch s {
	case BubbleIdle:
		return "Idle"
	case BubbleHolding:
		return "Holding"
	default:
		return "Unknown"
	}
}

// PopEvent 气泡破裂事件
//
// 粒子数量和心情增量作为一个整体产生和消费。
type PopEvent struct {
	BurstSize   int
	MoodDelta   float64
	HeldSeconds float64
	// Cancelled 为 true 表示由取消（指针离开控件）触发，奖励与正常松开相同
	Cancelled bool
}

// BubbleInteractionSystem 管理"按住膨胀、松开破裂"的手势
//
// 状态机：
//
//	Idle    --Start-->   Holding  记录开始时间，缩放重置为基础值
//	Holding --Update-->  Holding  缩放按固定步长增加，截断到最大值
//	Holding --Release--> Idle     根据按住时长产生 PopEvent，缩放复位
//	Holding --Cancel-->  Idle     与 Release 相同的奖励
//
// 重复 Start、空闲时 Release/Cancel 都是无操作。
type BubbleInteractionSystem struct {
	cfg config.BubbleConfig

	state     BubbleState
	startTime float64
	scale     float64
}

// NewBubbleInteractionSystem 创建气泡交互系统
func NewBubbleInteractionSystem(cfg config.BubbleConfig) *BubbleInteractionSystem {
	return &BubbleInteractionSystem{
		cfg:   cfg,
		state: BubbleIdle,
		scale: cfg.BaseScale,
	}
}

// Start 开始按住
//
// 返回 false 表示已经在按住中（重复信号被忽略）。
func (s *BubbleInteractionSystem) Start(now float64) bool {
	if s.state == BubbleHolding {
		return false
	}
	s.state = BubbleHolding
	s.startTime = now
	s.scale = s.cfg.BaseScale
	return true
}

// Update 每帧调用一次，按住时膨胀气泡
func (s *BubbleInteractionSystem) Update() {
	if s.state != BubbleHolding {
		return
	}
	if s.scale >= s.cfg.MaxScale {
		return
	}
	s.scale = math.Min(s.scale+s.cfg.GrowthPerTick, s.cfg.MaxScale)
}

// Release 松开，产生破裂事件
//
// 返回 false 表示当前未按住，没有事件。
func (s *BubbleInteractionSystem) Release(now float64) (PopEvent, bool) {
	return s.finish(now, false)
}

// Cancel 取消按住（如指针离开控件）
//
// 奖励按实际按住时长计算，与 Release 相同。
func (s *BubbleInteractionSystem) Cancel(now float64) (PopEvent, bool) {
	return s.finish(now, true)
}

func (s *BubbleInteractionSystem) finish(now float64, cancelled bool) (PopEvent, bool) {
	if s.state != BubbleHolding {
		return PopEvent{}, false
	}

	held := now - s.startTime
	pop := s.PopFor(held)
	pop.Cancelled = cancelled

	s.state = BubbleIdle
	s.scale = s.cfg.BaseScale

	log.Printf("[BubbleInteraction] Pop after %.2fs: burst=%d mood=+%.2f cancelled=%v",
		pop.HeldSeconds, pop.BurstSize, pop.MoodDelta, cancelled)
	return pop, true
}

// PopFor 计算按住 held 秒后的奖励
//
// 两个奖励都随按住时长单调不减；负时长（时钟异常）按 0 处理。
func (s *BubbleInteractionSystem) PopFor(held float64) PopEvent {
	if !(held > 0) {
		held = 0
	}
	return PopEvent{
		BurstSize:   int(math.Floor(s.cfg.Burst.At(held))),
		MoodDelta:   s.cfg.Mood.At(held),
		HeldSeconds: held,
	}
}

// State 返回当前状态
func (s *BubbleInteractionSystem) State() BubbleState {
	return s.state
}

// IsHolding 是否按住中
func (s *BubbleInteractionSystem) IsHolding() bool {
	return s.state == BubbleHolding
}

// Scale 返回当前气泡缩放
func (s *BubbleInteractionSystem) Scale() float64 {
	return s.scale
}

// HeldFor 返回按住至 now 的时长，未按住返回 0
func (s *BubbleInteractionSystem) HeldFor(now float64) float64 {
	if s.state != BubbleHolding || now < s.startTime {
		return 0
	}
	return now - s.startTime
}
