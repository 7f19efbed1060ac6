package systems

import (
	"image/color"
	"log"
	"math"
	"math/rand"

	"github.com/decker502/heartbloom/pkg/components"
	"github.com/decker502/heartbloom/pkg/config"
	"github.com/decker502/heartbloom/pkg/ecs"
)

// Point 归一化的场景坐标
type Point struct {
	X float64
	Y float64
}

// HeartView 是提供给渲染器的只读粒子快照
type HeartView struct {
	ID   ecs.EntityID
	X    float64
	Y    float64
	Size float64

	// Tint 仅在 HasTint 为 true 时有效，否则使用主题粒子色
	Tint    color.RGBA
	HasTint bool

	Burst    bool
	Age      float64
	Lifetime float64
	// Progress 年龄占生命周期的比例 ∈ [0,1)，用于淡出
	Progress float64
}

// HeartParticleSystem 管理心形粒子
//
// 粒子以实体形式保存在专属的 EntityManager 中（Heart + Position + Velocity + Lifetime 组件）。
// 系统只负责生成、移动和回收，不与心情或颜色耦合。
//
// 粒子总数受 MaxLive 限制，单次爆发受 MaxBurst 限制；非正数量的请求是无操作。
type HeartParticleSystem struct {
	entityManager  *ecs.EntityManager
	lifetimeSystem *LifetimeSystem
	cfg            config.ParticleConfig
	maxStep        float64
	rng            *rand.Rand

	lastUpdate float64
	updated    bool
}

// NewHeartParticleSystem 创建心形粒子系统
//
// em 应当只用于存放心形粒子；rng 为 nil 时使用固定种子。
func NewHeartParticleSystem(em *ecs.EntityManager, cfg *config.SceneConfig, rng *rand.Rand) *HeartParticleSystem {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &HeartParticleSystem{
		entityManager:  em,
		lifetimeSystem: NewLifetimeSystem(em),
		cfg:            cfg.Particles,
		maxStep:        cfg.Mood.MaxStepSeconds,
		rng:            rng,
	}
}

// SpawnAmbient 在环境范围内随机生成一个漂浮粒子
//
// 达到 MaxLive 时返回 false。
func (ps *HeartParticleSystem) SpawnAmbient(now float64) bool {
	if ps.LiveCount() >= ps.cfg.MaxLive {
		return false
	}

	amb := ps.cfg.Ambient
	ps.spawn(now, heartSpawn{
		x:        amb.X.Lerp(ps.rng.Float64()),
		y:        amb.Y.Lerp(ps.rng.Float64()),
		vx:       amb.DriftX.Lerp(ps.rng.Float64()),
		vy:       amb.DriftY.Lerp(ps.rng.Float64()),
		size:     amb.Size.Lerp(ps.rng.Float64()),
		lifetime: amb.Lifetime.Lerp(ps.rng.Float64()),
	})
	return true
}

// Burst 一次性生成 count 个粒子
//
// 参数：
//   - now: 场景时钟（秒）
//   - count: 请求数量，截断到 MaxBurst 以及剩余容量；<= 0 时无操作
//   - origin: 可选的爆发中心，nil 时粒子分布在整个场景
//   - tint: 可选的颜色覆盖
//
// 返回：
//   - int: 实际生成的数量
func (ps *HeartParticleSystem) Burst(now float64, count int, origin *Point, tint *color.RGBA) int {
	if count <= 0 {
		return 0
	}
	if count > ps.cfg.MaxBurst {
		count = ps.cfg.MaxBurst
	}
	if room := ps.cfg.MaxLive - ps.LiveCount(); count > room {
		log.Printf("[HeartParticleSystem] Burst truncated by live limit: requested=%d room=%d", count, room)
		count = room
	}
	if count <= 0 {
		return 0
	}

	b := ps.cfg.Burst
	for i := 0; i < count; i++ {
		angle := ps.rng.Float64() * 2 * math.Pi
		speed := b.Speed.Lerp(ps.rng.Float64())

		var x, y float64
		if origin != nil {
			r := ps.rng.Float64() * b.Spread
			x = origin.X + math.Cos(angle)*r
			y = origin.Y + math.Sin(angle)*r
		} else {
			x = ps.rng.Float64()
			y = ps.rng.Float64()
		}

		var particleTint *color.RGBA
		if tint != nil {
			c := *tint
			particleTint = &c
		}

		ps.spawn(now, heartSpawn{
			x:        clampUnit(x),
			y:        clampUnit(y),
			vx:       math.Cos(angle) * speed,
			vy:       math.Sin(angle) * speed,
			size:     b.Size.Lerp(ps.rng.Float64()),
			lifetime: b.Lifetime.Lerp(ps.rng.Float64()),
			tint:     particleTint,
			burst:    true,
		})
	}
	return count
}

// Update 推进粒子：按速度移动，回收生命周期结束的粒子，返回当前存活粒子
//
// 移动步长截断到 MaxStepSeconds，时钟倒退时不移动。
func (ps *HeartParticleSystem) Update(now float64) []HeartView {
	dt := 0.0
	if ps.updated {
		dt = now - ps.lastUpdate
		if dt < 0 {
			dt = 0
		}
		if dt > ps.maxStep {
			dt = ps.maxStep
		}
	}
	ps.lastUpdate = now
	ps.updated = true

	if dt > 0 {
		ps.move(now, dt)
	}

	if ps.lifetimeSystem.Update(now) > 0 {
		ps.entityManager.RemoveMarkedEntities()
	}

	return ps.Views(now)
}

// Views 返回存活粒子的快照（按 ID 升序），不修改任何状态
func (ps *HeartParticleSystem) Views(now float64) []HeartView {
	em := ps.entityManager
	ids := ecs.GetEntitiesWith3[
		*components.HeartComponent,
		*components.PositionComponent,
		*components.LifetimeComponent,
	](em)

	views := make([]HeartView, 0, len(ids))
	for _, id := range ids {
		heart, _ := ecs.GetComponent[*components.HeartComponent](em, id)
		pos, _ := ecs.GetComponent[*components.PositionComponent](em, id)
		life, _ := ecs.GetComponent[*components.LifetimeComponent](em, id)

		if now >= life.ExpiresAt() {
			continue
		}

		age := now - life.SpawnTime
		if age < 0 {
			age = 0
		}
		view := HeartView{
			ID:       id,
			X:        pos.X,
			Y:        pos.Y,
			Size:     heart.Size,
			Burst:    heart.Burst,
			Age:      age,
			Lifetime: life.MaxLifetime,
			Progress: age / life.MaxLifetime,
		}
		if heart.Tint != nil {
			view.Tint = *heart.Tint
			view.HasTint = true
		}
		views = append(views, view)
	}
	return views
}

// LiveCount 返回存活粒子数量
func (ps *HeartParticleSystem) LiveCount() int {
	return ps.entityManager.EntityCount()
}

// Clear 移除所有粒子
func (ps *HeartParticleSystem) Clear() {
	ps.entityManager.Clear()
}

// heartSpawn 单个粒子的生成参数
type heartSpawn struct {
	x, y     float64
	vx, vy   float64
	size     float64
	lifetime float64
	tint     *color.RGBA
	burst    bool
}

func (ps *HeartParticleSystem) spawn(now float64, s heartSpawn) ecs.EntityID {
	em := ps.entityManager
	id := em.CreateEntity()
	em.AddComponent(id, &components.HeartComponent{Size: s.size, Tint: s.tint, Burst: s.burst})
	em.AddComponent(id, &components.PositionComponent{X: s.x, Y: s.y})
	em.AddComponent(id, &components.VelocityComponent{VX: s.vx, VY: s.vy})
	em.AddComponent(id, &components.LifetimeComponent{SpawnTime: now, MaxLifetime: s.lifetime})
	return id
}

// move 按速度移动粒子，本步内新生成的粒子只移动其已存在的时长
func (ps *HeartParticleSystem) move(now, dt float64) {
	em := ps.entityManager
	ids := ecs.GetEntitiesWith3[
		*components.PositionComponent,
		*components.VelocityComponent,
		*components.LifetimeComponent,
	](em)
	for _, id := range ids {
		pos, _ := ecs.GetComponent[*components.PositionComponent](em, id)
		vel, _ := ecs.GetComponent[*components.VelocityComponent](em, id)
		life, _ := ecs.GetComponent[*components.LifetimeComponent](em, id)

		step := math.Min(dt, now-life.SpawnTime)
		if step <= 0 {
			continue
		}
		pos.X += vel.VX * step
		pos.Y += vel.VY * step
	}
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
