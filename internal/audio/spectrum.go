// Package audio 提供音频分析与提示音合成
//
// SpectrumAnalyzer 从播放中的 PCM 流计算频谱幅度，供场景做可视化联动；
// ChimePlayer 用 beep 合成泡泡破裂与绽放的提示音。
package audio

import (
	"encoding/binary"
	"io"
	"math"
	"math/cmplx"
	"sync"
)

// pcmFrameBytes 16 位小端立体声一帧的字节数（ebiten 解码输出格式）
const pcmFrameBytes = 4

// SpectrumAnalyzer 对最近 size 个采样做 FFT，按频段汇总为归一化幅度
//
// 实现 io.Writer：可以直接挂在播放流上（见 Tap）。并发安全。
type SpectrumAnalyzer struct {
	mu       sync.Mutex
	size     int
	bins     int
	samples  []float64 // 环形缓冲，单声道 [-1,1]
	window   []float64 // Hann 窗
	pos      int
	filled   int
	leftover []byte // 上次写入不足一帧的尾部
}

// NewSpectrumAnalyzer 创建频谱分析器
//
// size 向上取整到 2 的幂；bins 截断到 [1, size/2]。
func NewSpectrumAnalyzer(size, bins int) *SpectrumAnalyzer {
	size = nextPow2(max(size, 2))
	bins = min(max(bins, 1), size/2)

	window := make([]float64, size)
	for i := range window {
		window[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(size-1))
	}

	return &SpectrumAnalyzer{
		size:    size,
		bins:    bins,
		samples: make([]float64, size),
		window:  window,
	}
}

// Write 接收 16 位小端立体声 PCM，左右声道取平均
func (a *SpectrumAnalyzer) Write(p []byte) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	data := p
	if len(a.leftover) > 0 {
		data = append(a.leftover, p...)
	}

	frames := len(data) / pcmFrameBytes
	for i := 0; i < frames; i++ {
		off := i * pcmFrameBytes
		l := int16(binary.LittleEndian.Uint16(data[off:]))
		r := int16(binary.LittleEndian.Uint16(data[off+2:]))
		a.push((float64(l) + float64(r)) / 2 / 32768)
	}
	a.leftover = append([]byte(nil), data[frames*pcmFrameBytes:]...)

	return len(p), nil
}

// Tap 返回一个读取 r 的 Reader，读出的数据同时送入分析器
func (a *SpectrumAnalyzer) Tap(r io.Reader) io.Reader {
	return io.TeeReader(r, a)
}

// Magnitudes 返回每个频段的平均幅度，范围 [0,1]
//
// 满幅正弦所在频段的峰值约为 1；尚无数据时全部为 0。
func (a *SpectrumAnalyzer) Magnitudes() []float64 {
	a.mu.Lock()
	buf := make([]complex128, a.size)
	for i := 0; i < a.size; i++ {
		idx := (a.pos + i) % a.size // 从最旧的采样开始
		buf[i] = complex(a.samples[idx]*a.window[i], 0)
	}
	size, bins := a.size, a.bins
	a.mu.Unlock()

	spectrum := fft(buf)
	half := size / 2
	perBin := half / bins
	norm := float64(size) / 4 // Hann 窗下正弦峰值约为 A*N/4

	out := make([]float64, bins)
	for b := 0; b < bins; b++ {
		sum := 0.0
		for k := b * perBin; k < (b+1)*perBin; k++ {
			sum += cmplx.Abs(spectrum[k])
		}
		out[b] = math.Min(sum/float64(perBin)/norm, 1)
	}
	return out
}

// Buffered 已写入的采样数（最多为窗口长度）
func (a *SpectrumAnalyzer) Buffered() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.filled
}

// Reset 清空缓冲
func (a *SpectrumAnalyzer) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	clear(a.samples)
	a.pos = 0
	a.filled = 0
	a.leftover = nil
}

func (a *SpectrumAnalyzer) push(v float64) {
	a.samples[a.pos] = v
	a.pos = (a.pos + 1) % a.size
	if a.filled < a.size {
		a.filled++
	}
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// fft Cooley-Tukey，len(a) 必须是 2 的幂
func fft(a []complex128) []complex128 {
	n := len(a)
	if n == 1 {
		return []complex128{a[0]}
	}

	even := make([]complex128, n/2)
	odd := make([]complex128, n/2)
	for i := 0; i < n/2; i++ {
		even[i] = a[2*i]
		odd[i] = a[2*i+1]
	}
	even = fft(even)
	odd = fft(odd)

	res := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		t := cmplx.Exp(complex(0, -2*math.Pi*float64(k)/float64(n))) * odd[k]
		res[k] = even[k] + t
		res[k+n/2] = even[k] - t
	}
	return res
}
