package canvas

import "ink-canvas/pkg/geometry"

// World extents. Content may be drawn anywhere, but layout passes clamp
// into this bound; pan position itself is never clamped.
const (
	WorldWidth  = 8000.0
	WorldHeight = 6000.0
)

// Zoom range limits.
const (
	MinZoom = 0.1
	MaxZoom = 4.0
)

// Camera maps world space to the visible viewport. The transform is
//
//	world = (screen - viewportOrigin)/zoom - view
//
// and its inverse. Pan and zoom are not undoable content edits, so the
// camera travels outside the history mechanism.
type Camera struct {
	ViewX float64
	ViewY float64
	Zoom  float64
}

// DefaultCamera returns the camera for a freshly opened canvas.
func DefaultCamera() Camera {
	return Camera{Zoom: 1}
}

// ClampZoom limits a zoom factor to the supported range.
func ClampZoom(zoom float64) float64 {
	return geometry.Clamp(zoom, MinZoom, MaxZoom)
}

// ToWorld converts screen coordinates (relative to originX/originY, the
// viewport's top-left on screen) into world coordinates.
func (c Camera) ToWorld(screenX, screenY, originX, originY float64) (float64, float64) {
	wx := (screenX-originX)/c.Zoom - c.ViewX
	wy := (screenY-originY)/c.Zoom - c.ViewY
	return wx, wy
}

// ToScreen converts world coordinates back to screen coordinates.
func (c Camera) ToScreen(worldX, worldY, originX, originY float64) (float64, float64) {
	sx := (worldX+c.ViewX)*c.Zoom + originX
	sy := (worldY+c.ViewY)*c.Zoom + originY
	return sx, sy
}

// ZoomAt returns a camera at targetZoom positioned so that the world
// point currently under the screen-space focal point stays under it.
// Used by wheel zoom and pinch zoom.
func (c Camera) ZoomAt(targetZoom, focalX, focalY, originX, originY float64) Camera {
	zoom := ClampZoom(targetZoom)
	wx, wy := c.ToWorld(focalX, focalY, originX, originY)
	return Camera{
		ViewX: (focalX-originX)/zoom - wx,
		ViewY: (focalY-originY)/zoom - wy,
		Zoom:  zoom,
	}
}
