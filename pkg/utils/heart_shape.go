package utils

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// HeartOutline 返回单位心形轮廓（中心在原点，宽高不超过 1，y 轴向下）
//
// 使用经典参数方程 x = 16sin³t, y = 13cos t − 5cos 2t − 2cos 3t − cos 4t。
func HeartOutline(segments int) [][2]float32 {
	if segments < 8 {
		segments = 8
	}
	const scale = 1.0 / 34 // x ∈ [-16,16]，y ∈ [-17,12]

	points := make([][2]float32, segments)
	for i := range points {
		t := 2 * math.Pi * float64(i) / float64(segments)
		x := 16 * math.Pow(math.Sin(t), 3)
		y := 13*math.Cos(t) - 5*math.Cos(2*t) - 2*math.Cos(3*t) - math.Cos(4*t)
		// 纵向居中（y 的范围 [-17,12] 中点为 -2.5），并翻转为屏幕坐标
		points[i] = [2]float32{float32(x * scale), float32(-(y + 2.5) * scale)}
	}
	return points
}

// AppendHeart 以三角扇形式追加一个心形
//
// 顶点的纹理坐标固定为 (srcX, srcY)，配合 1x1 白色子图使用，颜色完全由顶点色决定。
func AppendHeart(vs []ebiten.Vertex, is []uint16, outline [][2]float32,
	cx, cy, size float32, r, g, b, a float32, srcX, srcY float32) ([]ebiten.Vertex, []uint16) {

	base := uint16(len(vs))
	vs = append(vs, ebiten.Vertex{
		DstX: cx, DstY: cy,
		SrcX: srcX, SrcY: srcY,
		ColorR: r, ColorG: g, ColorB: b, ColorA: a,
	})
	for _, p := range outline {
		vs = append(vs, ebiten.Vertex{
			DstX: cx + p[0]*size, DstY: cy + p[1]*size,
			SrcX: srcX, SrcY: srcY,
			ColorR: r, ColorG: g, ColorB: b, ColorA: a,
		})
	}

	n := uint16(len(outline))
	for i := uint16(0); i < n; i++ {
		is = append(is, base, base+1+i, base+1+(i+1)%n)
	}
	return vs, is
}
