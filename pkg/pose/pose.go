// Package pose 提供相机位姿的数据类型和几何运算。
//
// 所有角度使用弧度，欧拉角固定为 XYZ 顺序（R = Rx·Ry·Rz），
// 相机朝向自身 -Z 轴，世界上方向为 +Y。
package pose

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrMalformedOrientation 朝向既不是有效的欧拉角也不是有效的四元数
var ErrMalformedOrientation = errors.New("malformed orientation")

// WorldUp 世界上方向
var WorldUp = mgl64.Vec3{0, 1, 0}

// Euler XYZ 顺序欧拉角（弧度）
type Euler struct {
	X, Y, Z float64
}

// Add 分量相加
func (e Euler) Add(o Euler) Euler {
	return Euler{X: e.X + o.X, Y: e.Y + o.Y, Z: e.Z + o.Z}
}

// Array 返回 [x, y, z]
func (e Euler) Array() [3]float64 {
	return [3]float64{e.X, e.Y, e.Z}
}

func (e Euler) finite() bool {
	return isFinite(e.X) && isFinite(e.Y) && isFinite(e.Z)
}

// OrientationKind 朝向的来源表示
type OrientationKind int

const (
	// KindEuler 三分量欧拉角
	KindEuler OrientationKind = iota
	// KindQuat 四分量四元数（第四个分量为标量部分）
	KindQuat
)

// String 返回表示名称
func (k OrientationKind) String() string {
	switch k {
	case KindEuler:
		return "euler"
	case KindQuat:
		return "quaternion"
	default:
		return fmt.Sprintf("OrientationKind(%d)", int(k))
	}
}

// Orientation 带标签的朝向值
//
// 表示方式由数据源决定，零值为 Euler{0, 0, 0}。
// 插值统一在欧拉角上进行（见 Euler()），
// 来源标签只用于决定播放结尾调整的叠加方式。
type Orientation struct {
	kind  OrientationKind
	euler Euler
	quat  mgl64.Quat
}

// FromEuler 创建欧拉角朝向
func FromEuler(e Euler) Orientation {
	return Orientation{kind: KindEuler, euler: e}
}

// FromQuat 创建四元数朝向
func FromQuat(q mgl64.Quat) Orientation {
	return Orientation{kind: KindQuat, quat: q}
}

// FromComponents 按分量个数创建朝向：3 个为欧拉角，4 个为四元数 (x, y, z, w)
func FromComponents(c []float64) (Orientation, error) {
	switch len(c) {
	case 3:
		return FromEuler(Euler{X: c[0], Y: c[1], Z: c[2]}), nil
	case 4:
		return FromQuat(mgl64.Quat{W: c[3], V: mgl64.Vec3{c[0], c[1], c[2]}}), nil
	default:
		return Orientation{}, fmt.Errorf("%w: %d components", ErrMalformedOrientation, len(c))
	}
}

// Kind 返回来源表示
func (o Orientation) Kind() OrientationKind {
	return o.kind
}

// IsQuat 是否来源于四元数
func (o Orientation) IsQuat() bool {
	return o.kind == KindQuat
}

// Euler 返回 XYZ 欧拉角；四元数来源会先转换
func (o Orientation) Euler() Euler {
	if o.kind == KindQuat {
		return QuatToEuler(o.quat)
	}
	return o.euler
}

// Quat 返回四元数；欧拉角来源会先转换
func (o Orientation) Quat() mgl64.Quat {
	if o.kind == KindQuat {
		return o.quat
	}
	return EulerToQuat(o.euler)
}

// Normalize 校验并规范化朝向
//
// 欧拉角要求三个分量均为有限值；四元数要求分量有限且长度不为零，
// 返回单位四元数。校验失败返回 ErrMalformedOrientation。
func (o Orientation) Normalize() (Orientation, error) {
	switch o.kind {
	case KindEuler:
		if !o.euler.finite() {
			return Orientation{}, fmt.Errorf("%w: non-finite euler %v", ErrMalformedOrientation, o.euler)
		}
		return o, nil
	case KindQuat:
		q := o.quat
		if !isFinite(q.W) || !isFinite(q.V[0]) || !isFinite(q.V[1]) || !isFinite(q.V[2]) {
			return Orientation{}, fmt.Errorf("%w: non-finite quaternion", ErrMalformedOrientation)
		}
		l := q.Len()
		if l < 1e-9 {
			return Orientation{}, fmt.Errorf("%w: zero-length quaternion", ErrMalformedOrientation)
		}
		return FromQuat(q.Scale(1 / l)), nil
	default:
		return Orientation{}, fmt.Errorf("%w: unknown kind %v", ErrMalformedOrientation, o.kind)
	}
}

// Forward 相机前方向（-Z 轴经旋转后的世界方向）
func (o Orientation) Forward() mgl64.Vec3 {
	return o.Quat().Rotate(mgl64.Vec3{0, 0, -1})
}

// CameraPose 相机在某一时刻的外参与视场角
type CameraPose struct {
	Position    mgl64.Vec3
	Orientation Orientation
	FOV         float64 // 垂直视场角（度）
}

// ApproxEqual 位置、欧拉角、视场角均在 eps 以内
func (p CameraPose) ApproxEqual(o CameraPose, eps float64) bool {
	if !p.Position.ApproxEqualThreshold(o.Position, eps) {
		return false
	}
	a, b := p.Orientation.Euler(), o.Orientation.Euler()
	if math.Abs(a.X-b.X) > eps || math.Abs(a.Y-b.Y) > eps || math.Abs(a.Z-b.Z) > eps {
		return false
	}
	return math.Abs(p.FOV-o.FOV) <= eps
}

// Sample 动画源在某个局部时间给出的相机采样
//
// 每个通道都可以缺省（nil），缺省通道不参与本次更新。
type Sample struct {
	Position    *mgl64.Vec3
	Orientation *Orientation
	FOV         *float64
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
