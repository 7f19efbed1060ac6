package systems

import (
	"log"
	"math"

	"github.com/decker502/heartbloom/pkg/config"
)

// BloomEvent 一次绽放事件
type BloomEvent struct {
	// At 触发时刻（场景时钟，秒）
	At float64
	// CooldownUntil 冷却结束时刻，此前不会再次触发
	CooldownUntil float64
	// Count 本场景累计的绽放次数（含本次）
	Count int
}

// MoodEngine 心情引擎
//
// 独占心情值，负责：
//  1. 叠加交互带来的增量（ApplyDelta）
//  2. 随时间衰减（Decay / Advance）
//  3. 心情饱和时触发一次性的绽放事件，并维护冷却窗口（CheckBloom）
//
// 每次修改后心情值都被截断到 [0,100]。非并发安全，由场景串行化访问。
type MoodEngine struct {
	moodCfg  config.MoodConfig
	bloomCfg config.BloomConfig
	bands    []config.MoodBand

	mood float64
	// saturated 自上次 CheckBloom 以来增量曾把心情推到上限
	saturated bool

	lastTick float64
	ticked   bool

	bloomActive   bool
	cooldownUntil float64
	bloomCount    int
}

// NewMoodEngine 创建心情引擎，初始心情取自配置
func NewMoodEngine(cfg *config.SceneConfig) *MoodEngine {
	return &MoodEngine{
		moodCfg:  cfg.Mood,
		bloomCfg: cfg.Bloom,
		bands:    cfg.Bands,
		mood:     clampMood(cfg.Mood.Initial),
	}
}

// Value 返回当前心情值
func (m *MoodEngine) Value() float64 {
	return m.mood
}

// ApplyDelta 叠加心情增量，结果截断到 [0,100]
// NaN 被忽略，±Inf 截断到边界。
func (m *MoodEngine) ApplyDelta(d float64) {
	if math.IsNaN(d) {
		return
	}
	m.mood = clampMood(m.mood + d)
	if d > 0 && m.mood >= config.MoodMax {
		m.saturated = true
	}
}

// Decay 按经过的时间衰减心情
//
// dt 超过 MaxStepSeconds 时按 MaxStepSeconds 计算（时钟停顿视为一次大步长）；
// dt <= 0 时不做任何事。心情最低为 0。
func (m *MoodEngine) Decay(dt float64) {
	if !(dt > 0) {
		return
	}
	if dt > m.moodCfg.MaxStepSeconds {
		dt = m.moodCfg.MaxStepSeconds
	}
	m.mood = clampMood(m.mood - m.moodCfg.DecayPerSecond*dt)
}

// Advance 将引擎时钟推进到 now，并按经过的时间衰减
//
// 第一次调用只记录时钟；时钟倒退时不衰减。
func (m *MoodEngine) Advance(now float64) {
	if m.ticked {
		m.Decay(now - m.lastTick)
	}
	m.lastTick = now
	m.ticked = true
}

// CheckBloom 检查是否应触发绽放
//
// 冷却到期后自动清除；心情达到上限（或自上次检查以来曾被增量推到上限）
// 且不在冷却中时触发：
// 心情被设为 ResetMood，冷却持续到 now + CooldownSeconds。
//
// 返回：
//   - BloomEvent: 触发的事件
//   - bool: 本次是否触发
func (m *MoodEngine) CheckBloom(now float64) (BloomEvent, bool) {
	if m.bloomActive && now >= m.cooldownUntil {
		m.bloomActive = false
		log.Printf("[MoodEngine] Bloom cooldown cleared at %.2fs", now)
	}

	saturated := m.saturated || m.mood >= config.MoodMax
	m.saturated = false
	if !saturated || m.bloomActive {
		return BloomEvent{}, false
	}

	m.bloomActive = true
	m.cooldownUntil = now + m.bloomCfg.CooldownSeconds
	m.bloomCount++
	m.mood = clampMood(m.bloomCfg.ResetMood)

	log.Printf("[MoodEngine] Bloom triggered at %.2fs (count=%d, cooldown until %.2fs)",
		now, m.bloomCount, m.cooldownUntil)

	return BloomEvent{At: now, CooldownUntil: m.cooldownUntil, Count: m.bloomCount}, true
}

// Tick 衰减后检查绽放，等价于 Advance(now) + CheckBloom(now)
func (m *MoodEngine) Tick(now float64) (BloomEvent, bool) {
	m.Advance(now)
	return m.CheckBloom(now)
}

// BloomActive 返回绽放冷却是否仍在进行
func (m *MoodEngine) BloomActive() bool {
	return m.bloomActive
}

// CooldownRemaining 返回剩余冷却时间（秒），不在冷却中返回 0
func (m *MoodEngine) CooldownRemaining(now float64) float64 {
	if !m.bloomActive || now >= m.cooldownUntil {
		return 0
	}
	return m.cooldownUntil - now
}

// BloomCount 返回累计绽放次数
func (m *MoodEngine) BloomCount() int {
	return m.bloomCount
}

// CurrentBand 返回当前心情所在的色带（边界值属于较低色带）
func (m *MoodEngine) CurrentBand() config.MoodBand {
	return m.bands[config.BandIndexOf(m.bands, m.mood)]
}

// clampMood 将心情值截断到 [0,100]，NaN 视为下限
func clampMood(v float64) float64 {
	if math.IsNaN(v) || v < config.MoodMin {
		return config.MoodMin
	}
	if v > config.MoodMax {
		return config.MoodMax
	}
	return v
}
