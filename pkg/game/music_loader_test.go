package game

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

// fakePCM 固定长度的 PCM 流
type fakePCM struct {
	*bytes.Reader
}

func (f fakePCM) Length() int64 { return f.Size() }

func TestDecodeMusicRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		ext     string
		data    []byte
		wantErr string
	}{
		{"不支持的格式", ".wav", []byte("RIFF"), "unsupported audio format"},
		{"损坏的 MP3", ".mp3", []byte("not an mp3"), "failed to decode MP3"},
		{"损坏的 OGG", ".OGG", []byte("not an ogg"), "failed to decode OGG"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeMusic(tt.ext, tt.data)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("decodeMusic(%s) error = %v, want containing %q", tt.ext, err, tt.wantErr)
			}
		})
	}
}

func TestClampUnitVolume(t *testing.T) {
	for in, want := range map[float64]float64{-1: 0, 0: 0, 0.4: 0.4, 1: 1, 3: 1} {
		if got := clampUnitVolume(in); got != want {
			t.Errorf("clampUnitVolume(%v) = %v, want %v", in, got, want)
		}
	}
}

// TestDecodeMusicResamplesToContextRate 44.1kHz 等任意采样率的文件都按上下文采样率解码
func TestDecodeMusicResamplesToContextRate(t *testing.T) {
	for _, ext := range []string{".mp3", ".ogg"} {
		t.Run(ext, func(t *testing.T) {
			orig := musicDecoders[ext]
			t.Cleanup(func() { musicDecoders[ext] = orig })

			gotRate := 0
			musicDecoders[ext] = musicDecoder{orig.name, func(sampleRate int, r io.Reader) (pcmStream, error) {
				gotRate = sampleRate
				data, _ := io.ReadAll(r)
				return fakePCM{bytes.NewReader(data)}, nil
			}}

			s, err := decodeMusic(strings.ToUpper(ext), []byte("pcm"))
			if err != nil {
				t.Fatalf("decodeMusic: %v", err)
			}
			if gotRate != MusicSampleRate {
				t.Errorf("decoded at %d Hz, want %d", gotRate, MusicSampleRate)
			}
			if s.Length() != 3 {
				t.Errorf("stream length = %d, want 3", s.Length())
			}
		})
	}
}
