package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestDefaultSceneConfigIsValid(t *testing.T) {
	if err := DefaultSceneConfig().Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
}

func TestLoadSceneConfig(t *testing.T) {
	tests := []struct {
		name        string
		yamlContent string
		wantErr     bool
		errContains string
		validate    func(*testing.T, *SceneConfig)
	}{
		{
			name: "partial override keeps defaults",
			yamlContent: `
mood:
  initial: 50
  decayPerSecond: 0.1
bloom:
  cooldownSeconds: 3
`,
			validate: func(t *testing.T, cfg *SceneConfig) {
				if cfg.Mood.Initial != 50 {
					t.Errorf("expected initial = 50, got %f", cfg.Mood.Initial)
				}
				if cfg.Mood.DecayPerSecond != 0.1 {
					t.Errorf("expected decay = 0.1, got %f", cfg.Mood.DecayPerSecond)
				}
				if cfg.Bloom.CooldownSeconds != 3 {
					t.Errorf("expected cooldown = 3, got %f", cfg.Bloom.CooldownSeconds)
				}
				// 未配置的字段保留默认值
				if cfg.Bloom.ResetMood != 99 {
					t.Errorf("expected default resetMood = 99, got %f", cfg.Bloom.ResetMood)
				}
				if len(cfg.Bands) != 3 {
					t.Errorf("expected 3 default bands, got %d", len(cfg.Bands))
				}
			},
		},
		{
			name: "custom two band layout",
			yamlContent: `
bands:
  - name: Calm
    start: 0
    end: 50
    background: "#000000"
    light: "#111111"
    mid: "#222222"
    accent: "#333333"
  - name: Hot
    start: 50
    end: 100
    background: "#ff0000"
    light: "#ff1111"
    mid: "#ff2222"
    accent: "#ff3333"
`,
			validate: func(t *testing.T, cfg *SceneConfig) {
				if len(cfg.Bands) != 2 {
					t.Fatalf("expected 2 bands, got %d", len(cfg.Bands))
				}
				if cfg.Bands[1].Name != "Hot" {
					t.Errorf("expected second band Hot, got %s", cfg.Bands[1].Name)
				}
			},
		},
		{
			name: "overlapping bands",
			yamlContent: `
bands:
  - {name: A, start: 0, end: 60, background: "#000000", light: "#000000", mid: "#000000", accent: "#000000"}
  - {name: B, start: 40, end: 100, background: "#000000", light: "#000000", mid: "#000000", accent: "#000000"}
`,
			wantErr:     true,
			errContains: "overlaps",
		},
		{
			name: "gap between bands",
			yamlContent: `
bands:
  - {name: A, start: 0, end: 30, background: "#000000", light: "#000000", mid: "#000000", accent: "#000000"}
  - {name: B, start: 31, end: 100, background: "#000000", light: "#000000", mid: "#000000", accent: "#000000"}
`,
			wantErr:     true,
			errContains: "gap",
		},
		{
			name: "bands not covering ceiling",
			yamlContent: `
bands:
  - {name: A, start: 0, end: 90, background: "#000000", light: "#000000", mid: "#000000", accent: "#000000"}
`,
			wantErr:     true,
			errContains: "must end at 100",
		},
		{
			name: "bad color",
			yamlContent: `
bands:
  - {name: A, start: 0, end: 100, background: "blue", light: "#000000", mid: "#000000", accent: "#000000"}
`,
			wantErr:     true,
			errContains: "background color",
		},
		{
			name: "max burst above max live",
			yamlContent: `
particles:
  maxLive: 10
  maxBurst: 120
`,
			wantErr:     true,
			errContains: "maxLive",
		},
		{
			name: "inverted reward range",
			yamlContent: `
bubble:
  burst: {base: 8, gain: 32, min: 60, max: 8}
`,
			wantErr:     true,
			errContains: "bubble.burst",
		},
		{
			name:        "invalid yaml",
			yamlContent: "mood: [1, 2",
			wantErr:     true,
			errContains: "failed to parse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "scene.yaml")
			if err := os.WriteFile(path, []byte(tt.yamlContent), 0644); err != nil {
				t.Fatalf("failed to write test config: %v", err)
			}

			cfg, err := LoadSceneConfig(path)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.errContains)
				}
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("expected error containing %q, got %q", tt.errContains, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.validate != nil {
				tt.validate(t, cfg)
			}
		})
	}
}

// TestParseSceneConfigRejectsNonFinite NaN/Inf 能绕过大小比较，必须单独拒绝
func TestParseSceneConfigRejectsNonFinite(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		field string
	}{
		{"nan decay", "mood:\n  decayPerSecond: .nan\n", "mood.decayPerSecond"},
		{"inf regen", "mood:\n  ambientRegen: .inf\n", "mood.ambientRegen"},
		{"nan cooldown", "bloom:\n  cooldownSeconds: .nan\n", "bloom.cooldownSeconds"},
		{"nan range", "particles:\n  burst:\n    speed: {min: .nan, max: 0.3}\n", "particles.burst.speed.min"},
		{"inf reward", "bubble:\n  mood: {base: 2, gain: .inf, min: 2, max: 25}\n", "bubble.mood.gain"},
		{"nan band start", `bands:
  - {name: A, start: 0, end: 50, background: "#000000", light: "#111111", mid: "#222222", accent: "#333333"}
  - {name: B, start: .nan, end: 100, background: "#000000", light: "#111111", mid: "#222222", accent: "#333333"}
`, "bands[1].start"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSceneConfig([]byte(tt.yaml))
			if err == nil {
				t.Fatal("non-finite value must be rejected")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q should name %s", err, tt.field)
			}
		})
	}
}

func TestLoadSceneConfigMissingFile(t *testing.T) {
	_, err := LoadSceneConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestBandIndexBoundaryBelongsToLowerBand(t *testing.T) {
	cfg := DefaultSceneConfig()

	tests := []struct {
		mood float64
		want string
	}{
		{0, "Blue/Numbness"},
		{-5, "Blue/Numbness"},
		{30, "Blue/Numbness"},
		{30.0001, "Red/Intensity"},
		{65, "Red/Intensity"},
		{65.5, "Pink/Devotion"},
		{100, "Pink/Devotion"},
		{140, "Pink/Devotion"},
	}
	for _, tt := range tests {
		got := cfg.Bands[cfg.BandIndex(tt.mood)].Name
		if got != tt.want {
			t.Errorf("BandIndex(%v) = %s, want %s", tt.mood, got, tt.want)
		}
	}
}

func TestRewardCurveAt(t *testing.T) {
	curve := RewardCurve{Base: 8, Gain: 32, Min: 8, Max: 60}

	tests := []struct {
		held float64
		want float64
	}{
		{0, 8},
		{-2, 8},
		{1, 40},
		{3, 60}, // 8 + 3*32 = 104，截断到 60
	}
	for _, tt := range tests {
		if got := curve.At(tt.held); got != tt.want {
			t.Errorf("At(%v) = %v, want %v", tt.held, got, tt.want)
		}
	}
}

// TestBundledSceneYAMLMatchesDefaults 确保仓库中的 data/scene.yaml 与代码默认值一致
func TestBundledSceneYAMLMatchesDefaults(t *testing.T) {
	cfg, err := LoadSceneConfig(filepath.Join("..", "..", "data", "scene.yaml"))
	if err != nil {
		t.Fatalf("failed to load bundled scene.yaml: %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultSceneConfig()) {
		t.Errorf("data/scene.yaml drifted from DefaultSceneConfig():\nfile:     %+v\ndefaults: %+v", cfg, DefaultSceneConfig())
	}
}
