package core

import "math"

const (
	// ScanlineFrequency is the phase per unit of local vertex height; the
	// band repeats every 1/ScanlineFrequency units.
	ScanlineFrequency float32 = 0.25
	// ScanlineSpeed is the phase advanced per second of elapsed time.
	ScanlineSpeed float32 = 0.5
	// DefaultWireframeOpacity is the base opacity of the overlay.
	DefaultWireframeOpacity float32 = 0.25
)

func fract(x float32) float32 {
	return x - float32(math.Floor(float64(x)))
}

// ScanlineBand is the traveling band in [0,1] at a vertex height and time.
func ScanlineBand(vertexY, elapsed float32) float32 {
	y := fract(vertexY*ScanlineFrequency + elapsed*ScanlineSpeed)
	return Smoothstep(0, 0.01, y) - Smoothstep(0.02, 0.1, y)
}

// ScanlineOpacity is the overlay opacity for a fragment.
func ScanlineOpacity(vertexY, elapsed, base float32) float32 {
	return (ScanlineBand(vertexY, elapsed)*0.9 + 0.1) * base
}
