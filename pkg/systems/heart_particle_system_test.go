package systems

import (
	"image/color"
	"math"
	"math/rand"
	"testing"

	"github.com/decker502/heartbloom/pkg/config"
	"github.com/decker502/heartbloom/pkg/ecs"
)

func newTestParticleSystem(cfg *config.SceneConfig, seed int64) *HeartParticleSystem {
	if cfg == nil {
		cfg = config.DefaultSceneConfig()
	}
	return NewHeartParticleSystem(ecs.NewEntityManager(), cfg, rand.New(rand.NewSource(seed)))
}

// TestBurstClampedToMax 超过上限的请求只生成上限数量
func TestBurstClampedToMax(t *testing.T) {
	ps := newTestParticleSystem(nil, 1)

	spawned := ps.Burst(0, 500, nil, nil)
	if spawned != 120 {
		t.Errorf("spawned = %d, want 120", spawned)
	}
	if got := len(ps.Update(0)); got != 120 {
		t.Errorf("live = %d, want 120", got)
	}
}

func TestBurstNonPositiveIsNoOp(t *testing.T) {
	ps := newTestParticleSystem(nil, 1)

	for _, count := range []int{0, -1, -1000} {
		if spawned := ps.Burst(0, count, nil, nil); spawned != 0 {
			t.Errorf("Burst(%d) spawned %d, want 0", count, spawned)
		}
	}
	if ps.LiveCount() != 0 {
		t.Errorf("live = %d, want 0", ps.LiveCount())
	}
}

func TestBurstRespectsLiveLimit(t *testing.T) {
	cfg := config.DefaultSceneConfig()
	cfg.Particles.MaxLive = 150
	ps := newTestParticleSystem(cfg, 1)

	first := ps.Burst(0, 120, nil, nil)
	second := ps.Burst(0, 120, nil, nil)
	if first != 120 || second != 30 {
		t.Errorf("spawned %d then %d, want 120 then 30", first, second)
	}
	if ps.SpawnAmbient(0) {
		t.Error("SpawnAmbient must fail when the live set is full")
	}
}

// TestParticlesRetireAfterLifetime 粒子只在 [spawn, spawn+lifetime) 内可见
func TestParticlesRetireAfterLifetime(t *testing.T) {
	ps := newTestParticleSystem(nil, 3)

	ps.Burst(0, 50, nil, nil)

	// 爆发粒子寿命在 [1.2, 2.6) 内
	if got := len(ps.Update(1.0)); got != 50 {
		t.Fatalf("live at 1.0s = %d, want 50", got)
	}

	views := ps.Update(2.0)
	for _, v := range views {
		if v.Age >= v.Lifetime {
			t.Errorf("heart %d visible past its lifetime: age=%v lifetime=%v", v.ID, v.Age, v.Lifetime)
		}
		if v.Progress < 0 || v.Progress >= 1 {
			t.Errorf("heart %d progress %v out of [0,1)", v.ID, v.Progress)
		}
	}

	if got := len(ps.Update(2.6)); got != 0 {
		t.Errorf("live at 2.6s = %d, want 0", got)
	}
	if ps.LiveCount() != 0 {
		t.Errorf("retired hearts must leave the entity store, count=%d", ps.LiveCount())
	}
}

func TestBurstConcentratedNearOrigin(t *testing.T) {
	ps := newTestParticleSystem(nil, 5)
	origin := &Point{X: 0.3, Y: 0.4}

	ps.Burst(0, 80, origin, nil)
	for _, v := range ps.Views(0) {
		d := math.Hypot(v.X-origin.X, v.Y-origin.Y)
		if d > 0.06+1e-9 {
			t.Errorf("heart %d spawned %.3f away from origin, spread is 0.06", v.ID, d)
		}
		if !v.Burst {
			t.Errorf("heart %d should be flagged as burst", v.ID)
		}
	}
}

func TestBurstTintIsCopiedPerHeart(t *testing.T) {
	ps := newTestParticleSystem(nil, 5)
	tint := color.RGBA{R: 0xff, G: 0x4d, B: 0x6d, A: 0xff}

	ps.Burst(0, 3, nil, &tint)
	tint.R = 0 // 调用方之后修改不影响已生成的粒子

	for _, v := range ps.Views(0) {
		if !v.HasTint || v.Tint.R != 0xff {
			t.Errorf("heart %d tint = %+v (has=%v), want copied accent", v.ID, v.Tint, v.HasTint)
		}
	}
}

func TestSpawnAmbientWithinConfiguredRanges(t *testing.T) {
	cfg := config.DefaultSceneConfig()
	ps := newTestParticleSystem(cfg, 9)

	for i := 0; i < 100; i++ {
		if !ps.SpawnAmbient(0) {
			t.Fatalf("ambient spawn %d failed", i)
		}
	}

	amb := cfg.Particles.Ambient
	for _, v := range ps.Views(0) {
		if v.X < amb.X.Min || v.X > amb.X.Max || v.Y < amb.Y.Min || v.Y > amb.Y.Max {
			t.Errorf("ambient heart %d at (%.3f, %.3f) outside configured area", v.ID, v.X, v.Y)
		}
		if v.Size < amb.Size.Min || v.Size > amb.Size.Max {
			t.Errorf("ambient heart %d size %.2f outside range", v.ID, v.Size)
		}
		if v.Burst || v.HasTint {
			t.Errorf("ambient heart %d should be untinted and not burst", v.ID)
		}
	}
}

func TestAmbientHeartsDriftUpward(t *testing.T) {
	ps := newTestParticleSystem(nil, 11)
	ps.SpawnAmbient(0)

	before := ps.Update(0)[0]
	after := ps.Update(1)[0]
	if after.Y >= before.Y {
		t.Errorf("ambient heart should float up: y %.3f -> %.3f", before.Y, after.Y)
	}

	// 时钟停顿：移动步长被截断到 1 秒
	stalled := ps.Update(1 + 3600)
	if len(stalled) != 0 {
		// 寿命最长 7 秒，停顿后必然已过期
		t.Errorf("heart should have expired after stalled clock, got %d", len(stalled))
	}
}

func TestParticleSystemIsDeterministicForSeed(t *testing.T) {
	a := newTestParticleSystem(nil, 42)
	b := newTestParticleSystem(nil, 42)

	a.Burst(0, 20, &Point{X: 0.5, Y: 0.5}, nil)
	b.Burst(0, 20, &Point{X: 0.5, Y: 0.5}, nil)

	va, vb := a.Update(0.5), b.Update(0.5)
	if len(va) != len(vb) {
		t.Fatalf("live count differs: %d vs %d", len(va), len(vb))
	}
	for i := range va {
		if va[i] != vb[i] {
			t.Fatalf("heart %d differs: %+v vs %+v", i, va[i], vb[i])
		}
	}
}

// TestBubblePopDrivesClampedBurst 按住 3 秒得到 60 个粒子（气泡上限），粒子系统上限 120 不再截断
func TestBubblePopDrivesClampedBurst(t *testing.T) {
	cfg := config.DefaultSceneConfig()
	bubble := NewBubbleInteractionSystem(cfg.Bubble)
	ps := newTestParticleSystem(cfg, 2)

	bubble.Start(0)
	pop, _ := bubble.Release(3)

	if spawned := ps.Burst(3, pop.BurstSize, &Point{X: 0.5, Y: 0.5}, nil); spawned != 60 {
		t.Errorf("spawned = %d, want 60", spawned)
	}
}

func TestClearRemovesAllHearts(t *testing.T) {
	ps := newTestParticleSystem(nil, 1)
	ps.Burst(0, 10, nil, nil)
	ps.Clear()
	if len(ps.Update(0.1)) != 0 {
		t.Error("Clear should remove every heart")
	}
}

// TestFreshHeartsDoNotInheritFrameStep 同一帧内生成的粒子不会被整帧步长移动
func TestFreshHeartsDoNotInheritFrameStep(t *testing.T) {
	ps := newTestParticleSystem(nil, 8)
	ps.Update(0)

	origin := &Point{X: 0.5, Y: 0.5}
	ps.Burst(0.9, 40, origin, nil)

	for _, v := range ps.Update(0.9) {
		if d := math.Hypot(v.X-origin.X, v.Y-origin.Y); d > 0.06+1e-9 {
			t.Fatalf("heart %d moved %.3f before aging", v.ID, d)
		}
	}
}
