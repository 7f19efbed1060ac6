package scenes

import (
	"log"
	"time"
)

// Clock 返回场景时钟（秒）
type Clock func() float64

// StartAmbient 启动环境粒子计时器
//
// 计时器在独立 goroutine 中按 particles.ambientIntervalSeconds 触发 TriggerAmbient，
// 与主循环共用场景的互斥锁。已在运行时返回 false。
func (s *HeartScene) StartAmbient(clock Clock) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ambientStop != nil {
		return false
	}

	interval := time.Duration(s.cfg.Particles.AmbientIntervalSeconds * float64(time.Second))
	stop := make(chan struct{})
	done := make(chan struct{})
	s.ambientStop = stop
	s.ambientDone = done

	go s.runAmbient(interval, clock, stop, done)

	log.Printf("[HeartScene] Ambient timer started (interval=%v)", interval)
	return true
}

// Stop 停止环境计时器并等待其退出
//
// 可重复调用；停止后场景状态保持有效，可以再次 StartAmbient。
func (s *HeartScene) Stop() {
	s.mu.Lock()
	stop, done := s.ambientStop, s.ambientDone
	s.ambientStop, s.ambientDone = nil, nil
	s.mu.Unlock()

	if stop == nil {
		return
	}

	// 不能持锁等待：计时器可能正在等锁执行 TriggerAmbient
	close(stop)
	<-done
	log.Printf("[HeartScene] Ambient timer stopped")
}

// AmbientRunning 环境计时器是否在运行
func (s *HeartScene) AmbientRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ambientStop != nil
}

func (s *HeartScene) runAmbient(interval time.Duration, clock Clock, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			// 停止信号和 tick 同时就绪时优先退出
			select {
			case <-stop:
				return
			default:
			}
			s.TriggerAmbient(clock())
		}
	}
}
