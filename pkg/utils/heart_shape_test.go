package utils

import (
	"testing"
)

func TestHeartOutlineBounds(t *testing.T) {
	outline := HeartOutline(32)
	if len(outline) != 32 {
		t.Fatalf("len = %d, 期望 32", len(outline))
	}
	for i, p := range outline {
		if p[0] < -0.5 || p[0] > 0.5 || p[1] < -0.5 || p[1] > 0.5 {
			t.Errorf("point %d = %v 超出单位范围", i, p)
		}
	}
	// t=π 处为心尖，应在下方（屏幕 y 为正）
	if tip := outline[16]; tip[1] <= 0 {
		t.Errorf("心尖 %v 应位于中心下方", tip)
	}

	if got := len(HeartOutline(3)); got != 8 {
		t.Errorf("分段数过少时应提升到 8，得到 %d", got)
	}
}

func TestAppendHeart(t *testing.T) {
	outline := HeartOutline(16)

	vs, is := AppendHeart(nil, nil, outline, 100, 50, 20, 1, 0.5, 0.5, 0.8, 1, 1)
	vs, is = AppendHeart(vs, is, outline, 10, 10, 8, 1, 1, 1, 1, 1, 1)

	if len(vs) != 2*17 {
		t.Errorf("顶点数 = %d, 期望 34", len(vs))
	}
	if len(is) != 2*16*3 {
		t.Errorf("索引数 = %d, 期望 96", len(is))
	}
	// 第二个心形的索引从其自身的中心顶点开始
	if is[16*3] != 17 {
		t.Errorf("第二个心形的首个索引 = %d, 期望 17", is[16*3])
	}
	for _, idx := range is {
		if int(idx) >= len(vs) {
			t.Fatalf("索引 %d 越界", idx)
		}
	}
	if vs[0].DstX != 100 || vs[0].ColorA != 0.8 {
		t.Errorf("中心顶点 = %+v", vs[0])
	}
}
