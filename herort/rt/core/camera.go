package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// CameraParams describes the initial framing of the hero camera.
type CameraParams struct {
	Fov      float32 // vertical, degrees
	Near     float32
	Far      float32
	Distance float32
	// Direction is the initial eye offset from Target before it is scaled to
	// Distance.
	Direction mgl32.Vec3
	Target    mgl32.Vec3
}

func DefaultCameraParams() CameraParams {
	return CameraParams{
		Fov:       30,
		Near:      1,
		Far:       100,
		Distance:  15,
		Direction: mgl32.Vec3{-15, 1, 0},
		Target:    mgl32.Vec3{0, 1, 0},
	}
}

const polarEpsilon = 1e-4

// depthZeroToOne remaps GL clip depth [-w,w] to the [0,w] range WebGPU uses.
var depthZeroToOne = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// OrbitCamera orbits a target on a sphere, Y up. Drag input is accumulated
// as an angular velocity which is bled off each Update when damping is on.
type OrbitCamera struct {
	Target   mgl32.Vec3
	Distance float32
	Azimuth  float32 // around Y, from +Z towards +X
	Polar    float32 // from +Y

	Fov  float32
	Near float32
	Far  float32

	EnableDamping bool
	DampingFactor float32
	RotateSpeed   float32

	deltaAzimuth float32
	deltaPolar   float32
}

func NewOrbitCamera(p CameraParams) *OrbitCamera {
	dir := p.Direction
	if dir.Len() == 0 {
		dir = mgl32.Vec3{0, 0, 1}
	}
	dir = dir.Normalize()
	return &OrbitCamera{
		Target:        p.Target,
		Distance:      p.Distance,
		Azimuth:       float32(math.Atan2(float64(dir[0]), float64(dir[2]))),
		Polar:         float32(math.Acos(float64(clamp(dir[1], -1, 1)))),
		Fov:           p.Fov,
		Near:          p.Near,
		Far:           p.Far,
		EnableDamping: true,
		DampingFactor: 0.05,
		RotateSpeed:   1,
	}
}

func (c *OrbitCamera) Position() mgl32.Vec3 {
	sp, cp := math.Sincos(float64(c.Polar))
	sa, ca := math.Sincos(float64(c.Azimuth))
	offset := mgl32.Vec3{
		float32(sp * sa),
		float32(cp),
		float32(sp * ca),
	}.Mul(c.Distance)
	return c.Target.Add(offset)
}

// Rotate feeds a drag of (dx, dy) window pixels. A drag across the full
// viewport height turns the camera a full circle.
func (c *OrbitCamera) Rotate(dx, dy float32, viewportHeight int) {
	if viewportHeight <= 0 {
		return
	}
	k := 2 * math.Pi / float32(viewportHeight) * c.RotateSpeed
	c.deltaAzimuth -= dx * k
	c.deltaPolar -= dy * k
}

// Update applies pending rotation. Called once per frame.
func (c *OrbitCamera) Update() {
	if c.EnableDamping {
		c.Azimuth += c.deltaAzimuth * c.DampingFactor
		c.Polar += c.deltaPolar * c.DampingFactor
		c.deltaAzimuth *= 1 - c.DampingFactor
		c.deltaPolar *= 1 - c.DampingFactor
	} else {
		c.Azimuth += c.deltaAzimuth
		c.Polar += c.deltaPolar
		c.deltaAzimuth = 0
		c.deltaPolar = 0
	}
	c.Polar = clamp(c.Polar, polarEpsilon, math.Pi-polarEpsilon)
}

func (c *OrbitCamera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position(), c.Target, mgl32.Vec3{0, 1, 0})
}

func (c *OrbitCamera) ProjectionMatrix(aspect float32) mgl32.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	return depthZeroToOne.Mul4(mgl32.Perspective(mgl32.DegToRad(c.Fov), aspect, c.Near, c.Far))
}

func (c *OrbitCamera) ViewProjection(aspect float32) mgl32.Mat4 {
	return c.ProjectionMatrix(aspect).Mul4(c.ViewMatrix())
}
