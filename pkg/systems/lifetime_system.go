package systems

import (
	"github.com/decker502/heartbloom/pkg/components"
	"github.com/decker502/heartbloom/pkg/ecs"
)

// LifetimeSystem 管理实体的生命周期
//
// 以场景时钟为准做年龄检查：now >= SpawnTime + MaxLifetime 的实体被标记删除。
// 不为每个粒子单独开计时器，回收完全由 Update 驱动。
type LifetimeSystem struct {
	entityManager *ecs.EntityManager
}

// NewLifetimeSystem 创建一个新的生命周期系统
func NewLifetimeSystem(em *ecs.EntityManager) *LifetimeSystem {
	return &LifetimeSystem{
		entityManager: em,
	}
}

// Update 检查所有拥有生命周期组件的实体，返回本次标记删除的数量
//
// 调用方需随后调用 EntityManager.RemoveMarkedEntities() 真正删除。
func (s *LifetimeSystem) Update(now float64) int {
	// 查询所有拥有 LifetimeComponent 的实体
	entities := ecs.GetEntitiesWith1[*components.LifetimeComponent](s.entityManager)

	expired := 0
	for _, id := range entities {
		lifetime, ok := ecs.GetComponent[*components.LifetimeComponent](s.entityManager, id)
		if !ok {
			continue
		}

		// 检查是否过期
		if now >= lifetime.ExpiresAt() {
			lifetime.IsExpired = true
		}

		// 如果已过期,标记实体待删除
		if lifetime.IsExpired {
			s.entityManager.DestroyEntity(id)
			expired++
		}
	}
	return expired
}
