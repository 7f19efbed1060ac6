package components

// PositionComponent 存储实体在场景中的位置
// 坐标是归一化的场景比例：(0,0) 左上角，(1,1) 右下角
type PositionComponent struct {
	X float64
	Y float64
}

// VelocityComponent 存储实体的漂移速度(场景比例/秒)
type VelocityComponent struct {
	VX float64
	VY float64
}
