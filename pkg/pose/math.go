package pose

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/decker502/camtimeline/pkg/utils"
)

var (
	axisX = mgl64.Vec3{1, 0, 0}
	axisY = mgl64.Vec3{0, 1, 0}
	axisZ = mgl64.Vec3{0, 0, 1}
)

// LerpVec3 逐分量线性插值
func LerpVec3(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return mgl64.Vec3{
		utils.Lerp(a[0], b[0], t),
		utils.Lerp(a[1], b[1], t),
		utils.Lerp(a[2], b[2], t),
	}
}

// LerpEuler 欧拉角逐轴线性插值
//
// 注意：这不是球面插值，各轴独立插值，也不处理 ±π 处的回绕。
// 过渡阶段和漂移阶段都依赖这种逐轴插值方式。
func LerpEuler(a, b Euler, t float64) Euler {
	return Euler{
		X: utils.Lerp(a.X, b.X, t),
		Y: utils.Lerp(a.Y, b.Y, t),
		Z: utils.Lerp(a.Z, b.Z, t),
	}
}

// LookAt 计算位于 eye 的相机朝向 target 时的 XYZ 欧拉角
//
// 构造右手基：z = normalize(eye - target)，x = normalize(up × z)，y = z × x，
// 相机 -Z 指向目标，无滚转。
// eye 与 target 重合时 z 取 +Z；视线与 up 平行时对 z 做微小扰动。
func LookAt(eye, target mgl64.Vec3) Euler {
	return eulerFromMat3(lookAtBasis(eye, target, WorldUp))
}

func lookAtBasis(eye, target, up mgl64.Vec3) mgl64.Mat3 {
	z := eye.Sub(target)
	if z.Dot(z) == 0 {
		z = mgl64.Vec3{0, 0, 1}
	}
	z = z.Normalize()

	x := up.Cross(z)
	if x.Dot(x) == 0 {
		if math.Abs(up[2]) == 1 {
			z[0] += 0.0001
		} else {
			z[2] += 0.0001
		}
		z = z.Normalize()
		x = up.Cross(z)
	}
	x = x.Normalize()
	y := z.Cross(x)

	return mgl64.Mat3FromCols(x, y, z)
}

// EulerToQuat XYZ 欧拉角转单位四元数（q = qx·qy·qz）
func EulerToQuat(e Euler) mgl64.Quat {
	qx := mgl64.QuatRotate(e.X, axisX)
	qy := mgl64.QuatRotate(e.Y, axisY)
	qz := mgl64.QuatRotate(e.Z, axisZ)
	return qx.Mul(qy).Mul(qz)
}

// QuatToEuler 四元数转 XYZ 欧拉角
//
// 输入应为单位四元数（Orientation.Normalize 会保证这一点）。
func QuatToEuler(q mgl64.Quat) Euler {
	return eulerFromMat3(q.Mat4().Mat3())
}

// eulerFromMat3 从纯旋转矩阵提取 XYZ 欧拉角
// |m13| 接近 1 时为万向节锁，Z 取 0
func eulerFromMat3(m mgl64.Mat3) Euler {
	m11, m12, m13 := m.At(0, 0), m.At(0, 1), m.At(0, 2)
	m22, m23 := m.At(1, 1), m.At(1, 2)
	m32, m33 := m.At(2, 1), m.At(2, 2)

	var e Euler
	e.Y = math.Asin(math.Max(-1, math.Min(1, m13)))
	if math.Abs(m13) < 0.9999999 {
		e.X = math.Atan2(-m23, m33)
		e.Z = math.Atan2(-m12, m11)
	} else {
		e.X = math.Atan2(m32, m22)
		e.Z = 0
	}
	return e
}

// YawRotation 绕世界 Y 轴旋转 angle 的四元数
func YawRotation(angle float64) mgl64.Quat {
	return mgl64.QuatRotate(angle, axisY)
}
