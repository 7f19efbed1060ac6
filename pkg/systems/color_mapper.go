package systems

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/decker502/heartbloom/pkg/config"
)

// ThemeColors 是某个心情值对应的场景配色
type ThemeColors struct {
	Background color.RGBA
	Light      color.RGBA
	Mid        color.RGBA
	Accent     color.RGBA

	// Band 当前心情所在色带的名称，Label 为其描述
	Band  string
	Label string

	// NextBand 正在混合过去的色带（末尾色带时与 Band 相同）
	NextBand string

	// Blend 色带内插值因子 (mood - start) / (end - start) ∈ [0,1]
	Blend float64
}

// bandAnchor 色带及其预解析的颜色
type bandAnchor struct {
	band   config.MoodBand
	colors [4]colorful.Color // background, light, mid, accent
}

// ColorMapper 将心情值映射为主题配色
//
// 色带被当作插值锚点：心情位于第 i 个色带时，从色带 i 的颜色线性混合到色带 i+1 的颜色，
// 在色带终点恰好等于下一色带的颜色，因此整个 [0,100] 上颜色连续。
// 末尾色带保持自身颜色。
//
// ColorMapper 构造后只读，ColorFor 是纯函数。
type ColorMapper struct {
	bands   []config.MoodBand
	anchors []bandAnchor
}

// NewColorMapper 创建颜色映射器
//
// 色带无效（重叠、有缝隙、未覆盖 [0,100]、颜色无法解析）时返回错误。
func NewColorMapper(bands []config.MoodBand) (*ColorMapper, error) {
	if err := config.ValidateBands(bands); err != nil {
		return nil, fmt.Errorf("invalid mood bands: %w", err)
	}

	anchors := make([]bandAnchor, len(bands))
	for i, band := range bands {
		anchors[i].band = band
		for j, hex := range []string{band.Background, band.Light, band.Mid, band.Accent} {
			c, err := colorful.Hex(hex)
			if err != nil {
				return nil, fmt.Errorf("band '%s' color %q: %w", band.Name, hex, err)
			}
			anchors[i].colors[j] = c
		}
	}

	return &ColorMapper{bands: append([]config.MoodBand(nil), bands...), anchors: anchors}, nil
}

// ColorFor 返回心情值对应的主题配色
//
// 输入应已被截断到 [0,100]；越界值按最近端点处理，不会报错。
func (m *ColorMapper) ColorFor(mood float64) ThemeColors {
	idx := config.BandIndexOf(m.bands, mood)
	current := m.anchors[idx]

	next := current
	if idx+1 < len(m.anchors) {
		next = m.anchors[idx+1]
	}

	t := (mood - current.band.Start) / (current.band.End - current.band.Start)
	t = clamp01(t)

	theme := ThemeColors{
		Band:     current.band.Name,
		Label:    current.band.Label,
		NextBand: next.band.Name,
		Blend:    t,
	}
	theme.Background = toRGBA(current.colors[0].BlendRgb(next.colors[0], t))
	theme.Light = toRGBA(current.colors[1].BlendRgb(next.colors[1], t))
	theme.Mid = toRGBA(current.colors[2].BlendRgb(next.colors[2], t))
	theme.Accent = toRGBA(current.colors[3].BlendRgb(next.colors[3], t))
	return theme
}

// BandCount 返回色带数量
func (m *ColorMapper) BandCount() int {
	return len(m.anchors)
}

// HexColor 将 RGBA 格式化为 "#rrggbb"
func HexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func toRGBA(c colorful.Color) color.RGBA {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

func clamp01(v float64) float64 {
	if v < 0 || v != v {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
