package audio

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const (
	chimeSampleRate = beep.SampleRate(48000)

	popChimeDuration   = 250 * time.Millisecond
	bloomChimeDuration = 1200 * time.Millisecond
)

// bloomChord C 大三和弦
var bloomChord = []float64{523.25, 659.25, 783.99}

// ChimeGenerator 生成指数衰减的正弦和弦
type ChimeGenerator struct {
	sr    beep.SampleRate
	freqs []float64
	gain  float64
	decay float64 // 每秒衰减系数
	pos   int
}

// NewChimeGenerator 创建提示音生成器
func NewChimeGenerator(sr beep.SampleRate, gain, decay float64, freqs ...float64) *ChimeGenerator {
	return &ChimeGenerator{
		sr:    sr,
		freqs: freqs,
		gain:  gain,
		decay: decay,
	}
}

func (g *ChimeGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)

		sample := 0.0
		for _, f := range g.freqs {
			sample += math.Sin(2 * math.Pi * f * t)
		}
		if len(g.freqs) > 0 {
			sample /= float64(len(g.freqs))
		}

		// 5ms 起音，避免爆音
		attack := math.Min(t/0.005, 1.0)
		sample *= g.gain * attack * math.Exp(-g.decay*t)

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *ChimeGenerator) Err() error {
	return nil
}

// PopFrequency 破裂提示音音高：爆发越大音越高（440Hz 起，最高 880Hz）
func PopFrequency(burstSize int) float64 {
	return 440 + math.Min(float64(max(burstSize, 0)), 120)/120*440
}

// ChimePlayer 播放泡泡破裂和绽放提示音
type ChimePlayer struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
}

// NewChimePlayer 创建提示音播放器，需调用 Initialize 后才会发声
func NewChimePlayer() *ChimePlayer {
	return &ChimePlayer{
		mixer: &beep.Mixer{},
	}
}

// Initialize 初始化扬声器
func (p *ChimePlayer) Initialize() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}

	if err := speaker.Init(chimeSampleRate, chimeSampleRate.N(time.Millisecond*100)); err != nil {
		return err
	}

	speaker.Play(p.mixer)
	p.initialized = true
	return nil
}

// Close 停止所有提示音
func (p *ChimePlayer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}

	speaker.Lock()
	p.mixer.Clear()
	speaker.Unlock()
	p.initialized = false
}

// PlayPop 播放泡泡破裂音
func (p *ChimePlayer) PlayPop(burstSize int) {
	gen := NewChimeGenerator(chimeSampleRate, 0.25, 14, PopFrequency(burstSize))
	p.add(beep.Take(chimeSampleRate.N(popChimeDuration), gen))
}

// PlayBloom 播放绽放和弦
func (p *ChimePlayer) PlayBloom() {
	gen := NewChimeGenerator(chimeSampleRate, 0.3, 2.5, bloomChord...)
	p.add(beep.Take(chimeSampleRate.N(bloomChimeDuration), gen))
}

func (p *ChimePlayer) add(s beep.Streamer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	speaker.Lock()
	p.mixer.Add(s)
	speaker.Unlock()
}
