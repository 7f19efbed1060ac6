package game

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
)

// MusicSampleRate 背景音乐使用的音频上下文采样率
const MusicSampleRate = 48000

// PCMTap 旁路读取解码后的 PCM（16 位小端立体声）
type PCMTap interface {
	Tap(r io.Reader) io.Reader
}

// MusicLoader 加载循环播放的背景音乐
//
// 解码后的 PCM 在送往播放器之前经过 tap（通常是频谱分析器），
// 场景据此得到每帧的音频强度。
type MusicLoader struct {
	audioContext *audio.Context
	tap          PCMTap
	volume       float64
}

// NewMusicLoader 创建音乐加载器
//
// 参数：
//   - audioContext: 全局音频上下文
//   - tap: 可选，通常是频谱分析器；nil 表示不分析
func NewMusicLoader(audioContext *audio.Context, tap PCMTap) *MusicLoader {
	return &MusicLoader{
		audioContext: audioContext,
		tap:          tap,
		volume:       0.7,
	}
}

// SetVolume 设置后续创建的播放器音量（0.0 ~ 1.0）
func (ml *MusicLoader) SetVolume(volume float64) {
	ml.volume = clampUnitVolume(volume)
}

// Load 从文件加载音乐，支持 .mp3 和 .ogg
//
// 返回的播放器已设置音量但尚未开始播放。
func (ml *MusicLoader) Load(path string) (*audio.Player, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio file %s: %w", path, err)
	}
	return ml.LoadBytes(filepath.Ext(path), data)
}

// LoadBytes 从内存数据加载音乐，ext 为扩展名（如 ".mp3"）
func (ml *MusicLoader) LoadBytes(ext string, data []byte) (*audio.Player, error) {
	stream, err := decodeMusic(ext, data)
	if err != nil {
		return nil, err
	}

	loop := audio.NewInfiniteLoop(stream, stream.Length())

	var src io.Reader = loop
	if ml.tap != nil {
		src = ml.tap.Tap(loop)
	}

	player, err := ml.audioContext.NewPlayer(src)
	if err != nil {
		return nil, fmt.Errorf("failed to create audio player: %w", err)
	}
	player.SetVolume(ml.volume)

	log.Printf("[MusicLoader] Loaded %s stream (%d bytes PCM)", ext, stream.Length())
	return player, nil
}

type pcmStream interface {
	io.ReadSeeker
	Length() int64
}

// musicDecoder 解码并重采样到 sampleRate
type musicDecoder struct {
	name   string
	decode func(sampleRate int, r io.Reader) (pcmStream, error)
}

// musicDecoders 按扩展名（小写）索引
var musicDecoders = map[string]musicDecoder{
	".mp3": {"MP3", func(sampleRate int, r io.Reader) (pcmStream, error) {
		return mp3.DecodeWithSampleRate(sampleRate, r)
	}},
	".ogg": {"OGG", func(sampleRate int, r io.Reader) (pcmStream, error) {
		return vorbis.DecodeWithSampleRate(sampleRate, r)
	}},
}

// decodeMusic 用户文件的采样率不固定，统一重采样到 MusicSampleRate
func decodeMusic(ext string, data []byte) (pcmStream, error) {
	dec, ok := musicDecoders[strings.ToLower(ext)]
	if !ok {
		return nil, fmt.Errorf("unsupported audio format: %s (supported: .mp3, .ogg)", ext)
	}
	s, err := dec.decode(MusicSampleRate, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s audio: %w", dec.name, err)
	}
	return s, nil
}

func clampUnitVolume(volume float64) float64 {
	if volume < 0 {
		return 0
	}
	if volume > 1 {
		return 1
	}
	return volume
}
