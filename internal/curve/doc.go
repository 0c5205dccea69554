// Package curve provides piecewise-linear interpolation curves.
//
// A [Curve] is an ordered list of breakpoints mapping a scalar parameter to a
// value. Particle attributes (color, size, velocity) are described as curves
// over the normalized life fraction [0, 1]:
//
//	c := curve.NewColor()
//	c.Insert(0, mat32.Vec4{X: 1, W: 1})
//	c.Insert(1, mat32.Vec4{Y: 1, W: 0})
//	mid := c.Evaluate(0.5)
//
// Evaluation clamps outside the breakpoint range and never extrapolates.
package curve
