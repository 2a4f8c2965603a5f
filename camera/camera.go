// Package camera maps the toroidal trail grid onto the screen.
package camera

import "math"

// Camera is a pan/zoom view onto an N x N toroidal grid. Positions are in
// grid cells; Zoom is screen pixels per cell.
type Camera struct {
	// View center in grid cells
	X, Y float32

	Zoom float32

	ViewportW, ViewportH float32

	// Grid edge length N
	Size float32

	MinZoom, MaxZoom float32
}

// New creates a camera centered on a grid of the given size, zoomed so
// the grid fills the viewport.
func New(viewportW, viewportH float32, size int) *Camera {
	c := &Camera{
		ViewportW: viewportW,
		ViewportH: viewportH,
		Size:      float32(size),
		MaxZoom:   32,
	}
	c.MinZoom = c.fitZoom()
	c.Reset()
	return c
}

// fitZoom is the smallest zoom at which one copy of the grid covers the
// viewport.
func (c *Camera) fitZoom() float32 {
	z := c.ViewportW / c.Size
	if zh := c.ViewportH / c.Size; zh > z {
		z = zh
	}
	return z
}

// CellToScreen converts grid coordinates to screen coordinates, taking the
// shortest way around the torus from the view center.
func (c *Camera) CellToScreen(gx, gy float32) (sx, sy float32) {
	dx := toroidalDelta(gx, c.X, c.Size)
	dy := toroidalDelta(gy, c.Y, c.Size)
	return c.ViewportW/2 + dx*c.Zoom, c.ViewportH/2 + dy*c.Zoom
}

// ScreenToCell converts screen coordinates to wrapped grid coordinates.
func (c *Camera) ScreenToCell(sx, sy float32) (gx, gy float32) {
	dx := (sx - c.ViewportW/2) / c.Zoom
	dy := (sy - c.ViewportH/2) / c.Zoom
	return mod(c.X+dx, c.Size), mod(c.Y+dy, c.Size)
}

// Visible reports whether a point at (gx, gy) with the given radius in
// cells could be on screen.
func (c *Camera) Visible(gx, gy, radius float32) bool {
	dx := toroidalDelta(gx, c.X, c.Size)
	dy := toroidalDelta(gy, c.Y, c.Size)
	halfW := c.ViewportW/(2*c.Zoom) + radius
	halfH := c.ViewportH/(2*c.Zoom) + radius
	return absf(dx) <= halfW && absf(dy) <= halfH
}

// SourceRect returns the grid-space rectangle currently on screen. The
// origin may be negative or exceed Size; a repeat-wrapped texture sampled
// with this rectangle shows the torus seamlessly.
func (c *Camera) SourceRect() (x, y, w, h float32) {
	w = c.ViewportW / c.Zoom
	h = c.ViewportH / c.Zoom
	return c.X - w/2, c.Y - h/2, w, h
}

// Resize updates the viewport and keeps the zoom within the new bounds.
func (c *Camera) Resize(viewportW, viewportH float32) {
	if viewportW == c.ViewportW && viewportH == c.ViewportH {
		return
	}
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	c.MinZoom = c.fitZoom()
	c.SetZoom(c.Zoom)
}

// SetGridSize retargets the camera at a grid of a different size.
func (c *Camera) SetGridSize(size int) {
	if float32(size) == c.Size {
		return
	}
	c.Size = float32(size)
	c.MinZoom = c.fitZoom()
	c.Reset()
}

// Pan moves the view by a screen-pixel delta.
func (c *Camera) Pan(dx, dy float32) {
	c.X = mod(c.X+dx/c.Zoom, c.Size)
	c.Y = mod(c.Y+dy/c.Zoom, c.Size)
}

// SetZoom sets the zoom, clamped to [MinZoom, MaxZoom].
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
}

// ZoomBy multiplies the zoom by factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// Reset centers the view and fits the grid to the viewport.
func (c *Camera) Reset() {
	c.X = c.Size / 2
	c.Y = c.Size / 2
	c.Zoom = c.MinZoom
}

func toroidalDelta(to, from, size float32) float32 {
	d := to - from
	if d > size/2 {
		d -= size
	} else if d < -size/2 {
		d += size
	}
	return d
}

func mod(x, m float32) float32 {
	r := float32(math.Mod(float64(x), float64(m)))
	if r < 0 {
		r += m
	}
	return r
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
