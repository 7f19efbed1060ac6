package config

import (
	"fmt"
	"math"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

// 心情值的固定取值范围
const (
	MoodMin = 0.0
	MoodMax = 100.0
)

// SceneConfig 心情场景配置
//
// 包含心情衰减、绽放冷却、心情色带、心形粒子和气泡交互的全部调参。
// 配置文件位置: data/scene.yaml（默认嵌入到二进制中）
type SceneConfig struct {
	// Mood 心情数值参数
	Mood MoodConfig `yaml:"mood"`

	// Bloom 绽放事件参数
	Bloom BloomConfig `yaml:"bloom"`

	// Bands 心情色带，按 start 升序排列，必须连续覆盖 [0,100]
	Bands []MoodBand `yaml:"bands"`

	// Particles 心形粒子参数
	Particles ParticleConfig `yaml:"particles"`

	// Bubble 棒棒糖气泡交互参数
	Bubble BubbleConfig `yaml:"bubble"`
}

// MoodConfig 心情数值参数
type MoodConfig struct {
	// Initial 场景开始时的心情值
	Initial float64 `yaml:"initial"`

	// DecayPerSecond 每秒衰减量
	DecayPerSecond float64 `yaml:"decayPerSecond"`

	// MaxStepSeconds 单次衰减允许的最大时间步长（时钟停顿时截断）
	MaxStepSeconds float64 `yaml:"maxStepSeconds"`

	// AmbientRegen 每次环境计时器触发时追加的心情增量
	AmbientRegen float64 `yaml:"ambientRegen"`
}

// BloomConfig 绽放事件参数
type BloomConfig struct {
	// ResetMood 绽放后心情被设置的值（避免永久饱和）
	ResetMood float64 `yaml:"resetMood"`

	// CooldownSeconds 冷却时长，冷却期内不会再次绽放
	CooldownSeconds float64 `yaml:"cooldownSeconds"`

	// BurstCount 绽放时的心形爆发数量
	BurstCount int `yaml:"burstCount"`
}

// MoodBand 心情色带
//
// 边界值属于较低的色带：第一个色带为 [start,end]，其余为 (start,end]。
type MoodBand struct {
	Name  string  `yaml:"name"`
	Label string  `yaml:"label"`
	Start float64 `yaml:"start"`
	End   float64 `yaml:"end"`

	// 四种颜色（十六进制，如 "#ff4d6d"）
	Background string `yaml:"background"`
	Light      string `yaml:"light"`
	Mid        string `yaml:"mid"`
	Accent     string `yaml:"accent"`
}

// Range 闭区间 [Min, Max]
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Lerp 在区间内按 t ∈ [0,1] 取值
func (r Range) Lerp(t float64) float64 {
	return r.Min + (r.Max-r.Min)*t
}

// AmbientConfig 环境漂浮粒子的生成范围
type AmbientConfig struct {
	X        Range `yaml:"x"`
	Y        Range `yaml:"y"`
	Size     Range `yaml:"size"`
	Lifetime Range `yaml:"lifetime"`
	DriftX   Range `yaml:"driftX"`
	DriftY   Range `yaml:"driftY"`
}

// BurstConfig 爆发粒子的生成范围
type BurstConfig struct {
	// Spread 以 origin 为中心的位置抖动半径（场景比例）
	Spread   float64 `yaml:"spread"`
	Size     Range   `yaml:"size"`
	Lifetime Range   `yaml:"lifetime"`
	Speed    Range   `yaml:"speed"`
}

// ParticleConfig 心形粒子参数
type ParticleConfig struct {
	// MaxLive 同时存活的粒子上限，超出的生成请求被丢弃
	MaxLive int `yaml:"maxLive"`

	// MaxBurst 单次爆发的数量上限
	MaxBurst int `yaml:"maxBurst"`

	// AmbientChance 每帧生成一个环境粒子的概率
	AmbientChance float64 `yaml:"ambientChance"`

	// AmbientIntervalSeconds 独立环境计时器的周期
	AmbientIntervalSeconds float64 `yaml:"ambientIntervalSeconds"`

	Ambient AmbientConfig `yaml:"ambient"`
	Burst   BurstConfig   `yaml:"burst"`
}

// RewardCurve 按按住时长计算奖励: clamp(Base + held*Gain, Min, Max)
type RewardCurve struct {
	Base float64 `yaml:"base"`
	Gain float64 `yaml:"gain"`
	Min  float64 `yaml:"min"`
	Max  float64 `yaml:"max"`
}

// At 返回按住 held 秒后的奖励值，held 为负时按 0 处理
func (c RewardCurve) At(held float64) float64 {
	if held < 0 || math.IsNaN(held) {
		held = 0
	}
	v := c.Base + held*c.Gain
	if v < c.Min {
		return c.Min
	}
	if v > c.Max {
		return c.Max
	}
	return v
}

// BubbleConfig 气泡交互参数
type BubbleConfig struct {
	BaseScale     float64 `yaml:"baseScale"`
	MaxScale      float64 `yaml:"maxScale"`
	GrowthPerTick float64 `yaml:"growthPerTick"`

	// AnchorX/AnchorY 气泡在场景中的默认位置（没有指针位置时作为爆发中心）
	AnchorX float64 `yaml:"anchorX"`
	AnchorY float64 `yaml:"anchorY"`

	// Burst 破裂时的粒子数量曲线
	Burst RewardCurve `yaml:"burst"`

	// Mood 破裂时的心情增量曲线
	Mood RewardCurve `yaml:"mood"`
}

// DefaultSceneConfig 返回默认配置（与 data/scene.yaml 一致）
func DefaultSceneConfig() *SceneConfig {
	return &SceneConfig{
		Mood: MoodConfig{
			Initial:        20,
			DecayPerSecond: 0.05,
			MaxStepSeconds: 1.0,
			AmbientRegen:   0.03,
		},
		Bloom: BloomConfig{
			ResetMood:       99,
			CooldownSeconds: 8,
			BurstCount:      120,
		},
		Bands: []MoodBand{
			{
				Name: "Blue/Numbness", Label: "Quiet and a little numb, the heart is waiting.",
				Start: 0, End: 30,
				Background: "#1b2440", Light: "#7d8fc4", Mid: "#4a5d9c", Accent: "#9fb7ff",
			},
			{
				Name: "Red/Intensity", Label: "Warmth rising, every touch lands harder.",
				Start: 30, End: 65,
				Background: "#3a0d1a", Light: "#ff8a9a", Mid: "#d6304f", Accent: "#ff4d6d",
			},
			{
				Name: "Pink/Devotion", Label: "Overflowing and ready to bloom.",
				Start: 65, End: 100,
				Background: "#4a1036", Light: "#ffd1e8", Mid: "#ff7ab8", Accent: "#ffc2e0",
			},
		},
		Particles: ParticleConfig{
			MaxLive:                400,
			MaxBurst:               120,
			AmbientChance:          0.05,
			AmbientIntervalSeconds: 0.8,
			Ambient: AmbientConfig{
				X:        Range{Min: 0.05, Max: 0.95},
				Y:        Range{Min: 0.70, Max: 1.00},
				Size:     Range{Min: 8, Max: 18},
				Lifetime: Range{Min: 4, Max: 7},
				DriftX:   Range{Min: -0.02, Max: 0.02},
				DriftY:   Range{Min: -0.12, Max: -0.06},
			},
			Burst: BurstConfig{
				Spread:   0.06,
				Size:     Range{Min: 10, Max: 26},
				Lifetime: Range{Min: 1.2, Max: 2.6},
				Speed:    Range{Min: 0.05, Max: 0.35},
			},
		},
		Bubble: BubbleConfig{
			BaseScale:     1.0,
			MaxScale:      2.4,
			GrowthPerTick: 0.02,
			AnchorX:       0.5,
			AnchorY:       0.55,
			Burst:         RewardCurve{Base: 8, Gain: 32, Min: 8, Max: 60},
			Mood:          RewardCurve{Base: 2, Gain: 6, Min: 2, Max: 25},
		},
	}
}

// LoadSceneConfig 加载场景配置
//
// 从指定路径加载 YAML 格式的场景配置文件。
//
// 参数:
//   - path: 配置文件路径（如 "data/scene.yaml"）
//
// 返回:
//   - *SceneConfig: 加载成功后的配置结构
//   - error: 读取、解析或验证失败时返回错误
func LoadSceneConfig(path string) (*SceneConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene config: %w", err)
	}
	return ParseSceneConfig(data)
}

// ParseSceneConfig 从 YAML 字节解析场景配置
//
// 文件中未出现的字段保留默认值；bands 一旦出现则整体替换。
func ParseSceneConfig(data []byte) (*SceneConfig, error) {
	config := DefaultSceneConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse scene config: %w", err)
	}

	// 验证配置
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scene config: %w", err)
	}

	return config, nil
}

// Validate 验证配置有效性
//
// 色带必须有序、连续、互不重叠并覆盖 [0,100]，否则颜色映射未定义，场景拒绝启动。
func (c *SceneConfig) Validate() error {
	// NaN 能通过所有比较，先统一拒绝非有限值
	if err := c.validateFinite(); err != nil {
		return err
	}
	if err := ValidateBands(c.Bands); err != nil {
		return err
	}

	if c.Mood.Initial < MoodMin || c.Mood.Initial > MoodMax {
		return fmt.Errorf("mood.initial must be in [%.0f,%.0f], got %.2f", MoodMin, MoodMax, c.Mood.Initial)
	}
	if c.Mood.DecayPerSecond < 0 {
		return fmt.Errorf("mood.decayPerSecond must be >= 0, got %.4f", c.Mood.DecayPerSecond)
	}
	if c.Mood.MaxStepSeconds <= 0 {
		return fmt.Errorf("mood.maxStepSeconds must be > 0, got %.4f", c.Mood.MaxStepSeconds)
	}
	if c.Mood.AmbientRegen < 0 {
		return fmt.Errorf("mood.ambientRegen must be >= 0, got %.4f", c.Mood.AmbientRegen)
	}

	if c.Bloom.ResetMood <= MoodMin || c.Bloom.ResetMood >= MoodMax {
		return fmt.Errorf("bloom.resetMood must be inside (%.0f,%.0f), got %.2f", MoodMin, MoodMax, c.Bloom.ResetMood)
	}
	if c.Bloom.CooldownSeconds <= 0 {
		return fmt.Errorf("bloom.cooldownSeconds must be > 0, got %.2f", c.Bloom.CooldownSeconds)
	}
	if c.Bloom.BurstCount < 0 {
		return fmt.Errorf("bloom.burstCount must be >= 0, got %d", c.Bloom.BurstCount)
	}

	if err := c.validateParticles(); err != nil {
		return err
	}
	return c.validateBubble()
}

// ValidateBands 检查色带是否有序、连续、互不重叠并覆盖 [0,100]，且颜色可解析
func ValidateBands(bands []MoodBand) error {
	if len(bands) == 0 {
		return fmt.Errorf("at least one mood band is required")
	}
	if bands[0].Start != MoodMin {
		return fmt.Errorf("first band '%s' must start at %.0f, got %.2f", bands[0].Name, MoodMin, bands[0].Start)
	}
	last := bands[len(bands)-1]
	if last.End != MoodMax {
		return fmt.Errorf("last band '%s' must end at %.0f, got %.2f", last.Name, MoodMax, last.End)
	}

	names := make(map[string]bool, len(bands))
	for i, band := range bands {
		if band.Name == "" {
			return fmt.Errorf("band %d has no name", i)
		}
		if err := finite(fmt.Sprintf("bands[%d].start", i), band.Start); err != nil {
			return err
		}
		if err := finite(fmt.Sprintf("bands[%d].end", i), band.End); err != nil {
			return err
		}
		if names[band.Name] {
			return fmt.Errorf("duplicate band name '%s'", band.Name)
		}
		names[band.Name] = true

		if band.End <= band.Start {
			return fmt.Errorf("band '%s' invalid: end(%.2f) <= start(%.2f)", band.Name, band.End, band.Start)
		}
		if i > 0 {
			prev := bands[i-1]
			if band.Start < prev.End {
				return fmt.Errorf("band '%s' overlaps '%s': start(%.2f) < previous end(%.2f)",
					band.Name, prev.Name, band.Start, prev.End)
			}
			if band.Start > prev.End {
				return fmt.Errorf("gap between band '%s' and '%s': (%.2f, %.2f) not covered",
					prev.Name, band.Name, prev.End, band.Start)
			}
		}

		for field, hex := range map[string]string{
			"background": band.Background,
			"light":      band.Light,
			"mid":        band.Mid,
			"accent":     band.Accent,
		} {
			if _, err := colorful.Hex(hex); err != nil {
				return fmt.Errorf("band '%s' %s color %q invalid: %w", band.Name, field, hex, err)
			}
		}
	}
	return nil
}

func (c *SceneConfig) validateFinite() error {
	p, b := c.Particles, c.Bubble
	values := []struct {
		name string
		v    float64
	}{
		{"mood.initial", c.Mood.Initial},
		{"mood.decayPerSecond", c.Mood.DecayPerSecond},
		{"mood.maxStepSeconds", c.Mood.MaxStepSeconds},
		{"mood.ambientRegen", c.Mood.AmbientRegen},
		{"bloom.resetMood", c.Bloom.ResetMood},
		{"bloom.cooldownSeconds", c.Bloom.CooldownSeconds},
		{"particles.ambientChance", p.AmbientChance},
		{"particles.ambientIntervalSeconds", p.AmbientIntervalSeconds},
		{"particles.burst.spread", p.Burst.Spread},
		{"bubble.baseScale", b.BaseScale},
		{"bubble.maxScale", b.MaxScale},
		{"bubble.growthPerTick", b.GrowthPerTick},
		{"bubble.anchorX", b.AnchorX},
		{"bubble.anchorY", b.AnchorY},
	}
	for _, item := range values {
		if err := finite(item.name, item.v); err != nil {
			return err
		}
	}

	ranges := map[string]Range{
		"particles.ambient.x":        p.Ambient.X,
		"particles.ambient.y":        p.Ambient.Y,
		"particles.ambient.size":     p.Ambient.Size,
		"particles.ambient.lifetime": p.Ambient.Lifetime,
		"particles.ambient.driftX":   p.Ambient.DriftX,
		"particles.ambient.driftY":   p.Ambient.DriftY,
		"particles.burst.size":       p.Burst.Size,
		"particles.burst.lifetime":   p.Burst.Lifetime,
		"particles.burst.speed":      p.Burst.Speed,
	}
	for name, r := range ranges {
		if err := finite(name+".min", r.Min); err != nil {
			return err
		}
		if err := finite(name+".max", r.Max); err != nil {
			return err
		}
	}

	for name, curve := range map[string]RewardCurve{"bubble.burst": b.Burst, "bubble.mood": b.Mood} {
		for field, v := range map[string]float64{"base": curve.Base, "gain": curve.Gain, "min": curve.Min, "max": curve.Max} {
			if err := finite(name+"."+field, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// finite 拒绝 NaN 和 ±Inf
func finite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%s must be a finite number, got %v", name, v)
	}
	return nil
}

func (c *SceneConfig) validateParticles() error {
	p := c.Particles
	if p.MaxBurst <= 0 {
		return fmt.Errorf("particles.maxBurst must be > 0, got %d", p.MaxBurst)
	}
	if p.MaxLive < p.MaxBurst {
		return fmt.Errorf("particles.maxLive(%d) must be >= maxBurst(%d)", p.MaxLive, p.MaxBurst)
	}
	if p.AmbientChance < 0 || p.AmbientChance > 1 {
		return fmt.Errorf("particles.ambientChance must be in [0,1], got %.3f", p.AmbientChance)
	}
	if p.AmbientIntervalSeconds <= 0 {
		return fmt.Errorf("particles.ambientIntervalSeconds must be > 0, got %.3f", p.AmbientIntervalSeconds)
	}
	if p.Burst.Spread < 0 {
		return fmt.Errorf("particles.burst.spread must be >= 0, got %.3f", p.Burst.Spread)
	}

	ranges := []struct {
		name string
		r    Range
	}{
		{"particles.ambient.x", p.Ambient.X},
		{"particles.ambient.y", p.Ambient.Y},
		{"particles.ambient.size", p.Ambient.Size},
		{"particles.ambient.lifetime", p.Ambient.Lifetime},
		{"particles.ambient.driftX", p.Ambient.DriftX},
		{"particles.ambient.driftY", p.Ambient.DriftY},
		{"particles.burst.size", p.Burst.Size},
		{"particles.burst.lifetime", p.Burst.Lifetime},
		{"particles.burst.speed", p.Burst.Speed},
	}
	for _, item := range ranges {
		if item.r.Min > item.r.Max {
			return fmt.Errorf("%s range invalid: min(%.3f) > max(%.3f)", item.name, item.r.Min, item.r.Max)
		}
	}
	if p.Ambient.Lifetime.Min <= 0 || p.Burst.Lifetime.Min <= 0 {
		return fmt.Errorf("particle lifetimes must be > 0")
	}
	return nil
}

func (c *SceneConfig) validateBubble() error {
	b := c.Bubble
	if b.BaseScale <= 0 || b.MaxScale < b.BaseScale {
		return fmt.Errorf("bubble scale invalid: base(%.2f) max(%.2f)", b.BaseScale, b.MaxScale)
	}
	if b.GrowthPerTick < 0 {
		return fmt.Errorf("bubble.growthPerTick must be >= 0, got %.4f", b.GrowthPerTick)
	}
	if b.Burst.Min > b.Burst.Max || b.Burst.Min < 0 {
		return fmt.Errorf("bubble.burst range invalid: min(%.1f) max(%.1f)", b.Burst.Min, b.Burst.Max)
	}
	if b.Mood.Min > b.Mood.Max {
		return fmt.Errorf("bubble.mood range invalid: min(%.1f) > max(%.1f)", b.Mood.Min, b.Mood.Max)
	}
	if b.Burst.Gain < 0 || b.Mood.Gain < 0 {
		return fmt.Errorf("bubble reward gains must be >= 0")
	}
	return nil
}

// BandIndex 返回心情值所在色带的下标
//
// 边界值属于较低的色带；超出 [0,100] 的值落到首/末色带。
func (c *SceneConfig) BandIndex(mood float64) int {
	return BandIndexOf(c.Bands, mood)
}

// BandIndexOf 与 BandIndex 相同，直接作用于色带切片
func BandIndexOf(bands []MoodBand, mood float64) int {
	for i, band := range bands {
		if mood <= band.End {
			return i
		}
	}
	return len(bands) - 1
}
