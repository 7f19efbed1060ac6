package components

// LifetimeComponent 管理实体的生命周期
// 以场景时钟记录出生时间，年龄由调用方传入的 now 计算，不逐帧累加
type LifetimeComponent struct {
	SpawnTime   float64 // 出生时间(场景秒)
	MaxLifetime float64 // 最大生命周期(秒)
	IsExpired   bool    // 是否已过期
}

// ExpiresAt 过期时刻，now >= ExpiresAt() 即不再可见
func (l *LifetimeComponent) ExpiresAt() float64 {
	return l.SpawnTime + l.MaxLifetime
}
