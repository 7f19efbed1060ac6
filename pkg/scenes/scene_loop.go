package scenes

import (
	"context"
	"sync"
	"time"
)

// DefaultTPS 默认每秒 tick 数
const DefaultTPS = 60

// NewWallClock 返回从调用时刻开始计时的场景时钟
func NewWallClock() Clock {
	start := time.Now()
	return func() float64 {
		return time.Since(start).Seconds()
	}
}

// ManualClock 手动推进的时钟，用于无界面运行和测试
type ManualClock struct {
	mu  sync.Mutex
	now float64
}

// Now 当前时间（秒）
func (c *ManualClock) Now() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance 推进 dt 秒，返回新的时间
func (c *ManualClock) Advance(dt float64) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += dt
	return c.now
}

// SceneLoop 以固定频率驱动 HeartScene
//
// 供没有自带游戏循环的渲染器使用（终端渲染器等）；ebiten 版本由 ebiten 的 Update 驱动。
type SceneLoop struct {
	scene   *HeartScene
	clock   Clock
	tps     int
	onFrame func(Frame)
}

// NewSceneLoop 创建场景循环，tps <= 0 时使用 DefaultTPS
func NewSceneLoop(scene *HeartScene, clock Clock, tps int, onFrame func(Frame)) *SceneLoop {
	if tps <= 0 {
		tps = DefaultTPS
	}
	if clock == nil {
		clock = NewWallClock()
	}
	return &SceneLoop{
		scene:   scene,
		clock:   clock,
		tps:     tps,
		onFrame: onFrame,
	}
}

// Clock 返回循环使用的时钟，输入事件应使用同一时钟打时间戳
func (l *SceneLoop) Clock() Clock {
	return l.clock
}

// Run 运行循环直到 ctx 取消，同时负责环境计时器的启停
func (l *SceneLoop) Run(ctx context.Context) error {
	l.scene.StartAmbient(l.clock)
	defer l.scene.Stop()

	ticker := time.NewTicker(time.Second / time.Duration(l.tps))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			frame := l.scene.Update(l.clock())
			if l.onFrame != nil {
				l.onFrame(frame)
			}
		}
	}
}
