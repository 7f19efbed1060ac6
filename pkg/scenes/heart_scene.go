package scenes

import (
	"fmt"
	"log"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/decker502/heartbloom/pkg/config"
	"github.com/decker502/heartbloom/pkg/ecs"
	"github.com/decker502/heartbloom/pkg/game"
	"github.com/decker502/heartbloom/pkg/systems"
)

// pendingPop 等待下一个 tick 结算的泡泡破裂
type pendingPop struct {
	event  systems.PopEvent
	origin systems.Point
}

// HeartScene 心情场景
//
// 持有 MoodEngine、BubbleInteractionSystem、HeartParticleSystem 和 ColorMapper，
// 所有公开方法都在同一把互斥锁下执行，主循环和环境计时器因此不会交错修改状态。
//
// 每个 tick 的顺序固定：
//
//	衰减 → 泡泡缩放 → 结算待处理增量 → 环境粒子 → 粒子老化 → 绽放检查 → 主题色
//
// 绽放检查看到的是衰减和增量之后的心情，主题色看到的是绽放修正之后的心情。
type HeartScene struct {
	mu sync.Mutex

	cfg       *config.SceneConfig
	rng       *rand.Rand
	mood      *systems.MoodEngine
	bubble    *systems.BubbleInteractionSystem
	particles *systems.HeartParticleSystem
	colors    *systems.ColorMapper
	notes     game.NoteSink

	pendingDelta float64
	pendingPops  []pendingPop

	pointer    systems.Point
	hasPointer bool
	audioLevel float64
	lastNow    float64

	last Frame

	ambientStop chan struct{}
	ambientDone chan struct{}
}

// NewHeartScene 创建场景
//
// 参数：
//   - cfg: 场景配置，nil 时使用默认配置；配置无效时返回错误
//   - rng: 随机源，nil 时以当前时间为种子
//   - notes: 随笔持久化接口，可为 nil
func NewHeartScene(cfg *config.SceneConfig, rng *rand.Rand, notes game.NoteSink) (*HeartScene, error) {
	if cfg == nil {
		cfg = config.DefaultSceneConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scene config: %w", err)
	}

	colors, err := systems.NewColorMapper(cfg.Bands)
	if err != nil {
		return nil, fmt.Errorf("failed to create color mapper: %w", err)
	}

	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	s := &HeartScene{
		cfg:       cfg,
		rng:       rng,
		mood:      systems.NewMoodEngine(cfg),
		bubble:    systems.NewBubbleInteractionSystem(cfg.Bubble),
		particles: systems.NewHeartParticleSystem(ecs.NewEntityManager(), cfg, rng),
		colors:    colors,
		notes:     notes,
	}
	s.last = s.frameLocked(0, nil, false)

	log.Printf("[HeartScene] Initialized: mood=%.1f bands=%d maxLive=%d",
		s.mood.Value(), colors.BandCount(), cfg.Particles.MaxLive)
	return s, nil
}

// Update 推进一个 tick 并返回渲染数据
func (s *HeartScene) Update(now float64) Frame {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastNow = now

	// 1. 衰减
	s.mood.Advance(now)

	// 2. 泡泡缩放
	s.bubble.Update()

	// 3. 结算待处理增量
	pops := make([]systems.PopEvent, 0, len(s.pendingPops))
	for _, p := range s.pendingPops {
		s.mood.ApplyDelta(p.event.MoodDelta)
		origin := p.origin
		s.particles.Burst(now, p.event.BurstSize, &origin, nil)
		pops = append(pops, p.event)
	}
	s.pendingPops = s.pendingPops[:0]
	if s.pendingDelta != 0 {
		s.mood.ApplyDelta(s.pendingDelta)
		s.pendingDelta = 0
	}

	// 4. 环境粒子
	if s.rng.Float64() < s.cfg.Particles.AmbientChance {
		s.particles.SpawnAmbient(now)
	}

	// 5. 粒子老化
	s.particles.Update(now)

	// 6. 绽放检查
	_, fired := s.mood.CheckBloom(now)
	if fired {
		accent := s.colors.ColorFor(s.mood.Value()).Accent
		center := systems.Point{X: 0.5, Y: 0.5}
		spawned := s.particles.Burst(now, s.cfg.Bloom.BurstCount, &center, &accent)
		log.Printf("[HeartScene] Bloom burst: %d hearts", spawned)
	}

	// 7. 主题色
	s.last = s.frameLocked(now, pops, fired)
	return s.last.clone()
}

// frameLocked 用当前状态构造一帧，调用方需持有锁
func (s *HeartScene) frameLocked(now float64, pops []systems.PopEvent, fired bool) Frame {
	mood := s.mood.Value()
	theme := s.colors.ColorFor(mood)
	return Frame{
		Now:               now,
		Mood:              mood,
		Band:              theme.Band,
		Theme:             theme,
		Hearts:            s.particles.Views(now),
		BubbleScale:       s.bubble.Scale(),
		Holding:           s.bubble.IsHolding(),
		BloomActive:       s.mood.BloomActive(),
		BloomFired:        fired,
		BloomCount:        s.mood.BloomCount(),
		CooldownRemaining: s.mood.CooldownRemaining(now),
		Pops:              pops,
		AudioLevel:        s.audioLevel,
		Pointer:           s.pointer,
		HasPointer:        s.hasPointer,
	}
}

// Snapshot 返回最近一次 Update 产生的帧
func (s *HeartScene) Snapshot() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last.clone()
}

// HoldStart 开始按住泡泡，重复调用无效
func (s *HeartScene) HoldStart(now float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bubble.Start(now)
}

// HoldEnd 松开泡泡，破裂奖励在下一个 tick 结算
func (s *HeartScene) HoldEnd(now float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pop, ok := s.bubble.Release(now); ok {
		s.queuePopLocked(pop)
	}
}

// HoldCancel 指针离开等取消操作，奖励与 HoldEnd 相同
func (s *HeartScene) HoldCancel(now float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pop, ok := s.bubble.Cancel(now); ok {
		s.queuePopLocked(pop)
	}
}

func (s *HeartScene) queuePopLocked(pop systems.PopEvent) {
	origin := systems.Point{X: s.cfg.Bubble.AnchorX, Y: s.cfg.Bubble.AnchorY}
	if s.hasPointer {
		origin = s.pointer
	}
	s.pendingPops = append(s.pendingPops, pendingPop{event: pop, origin: origin})
}

// PointerMove 更新指针位置（归一化坐标，越界时截断）
func (s *HeartScene) PointerMove(x, y float64) {
	if math.IsNaN(x) || math.IsNaN(y) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pointer = systems.Point{X: clamp01(x), Y: clamp01(y)}
	s.hasPointer = true
}

// AudioFrame 接收一帧频谱幅度，只影响 Frame.AudioLevel，不影响心情
func (s *HeartScene) AudioFrame(magnitudes []float64) {
	sum, n := 0.0, 0
	for _, m := range magnitudes {
		if math.IsNaN(m) || math.IsInf(m, 0) {
			continue
		}
		sum += m
		n++
	}
	level := 0.0
	if n > 0 {
		level = clamp01(sum / float64(n))
	}

	s.mu.Lock()
	s.audioLevel = level
	s.mu.Unlock()
}

// TriggerAmbient 环境计时器触发：生成一个漂浮粒子，并在下个 tick 加上少量心情回升
func (s *HeartScene) TriggerAmbient(now float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.particles.SpawnAmbient(now)
	s.pendingDelta += s.cfg.Mood.AmbientRegen
}

// Reflect 以当前色带生成一条随笔并交给 NoteSink
//
// 空白文本被忽略。持久化失败只记录日志，不影响场景。
func (s *HeartScene) Reflect(text string) (game.Note, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return game.Note{}, false
	}

	s.mu.Lock()
	mood := s.mood.Value()
	theme := s.colors.ColorFor(mood)
	sink := s.notes
	s.mu.Unlock()

	note := game.Note{
		Text:      text,
		Band:      theme.Band,
		Accent:    systems.HexColor(theme.Accent),
		Mood:      mood,
		CreatedAt: time.Now(),
	}

	if sink != nil {
		if err := sink.SaveNote(note); err != nil {
			log.Printf("[HeartScene] Warning: failed to save note: %v", err)
		}
	}
	return note, true
}

// ReflectBand 以当前色带的描述作为随笔内容
func (s *HeartScene) ReflectBand() (game.Note, bool) {
	s.mu.Lock()
	label := s.mood.CurrentBand().Label
	s.mu.Unlock()
	return s.Reflect(label)
}

// Mood 当前心情值
func (s *HeartScene) Mood() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mood.Value()
}

// Config 返回场景配置（只读）
func (s *HeartScene) Config() *config.SceneConfig {
	return s.cfg
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
