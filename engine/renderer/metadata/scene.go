package metadata

import "github.com/spaghettifunk/prism/engine/math"

// SceneView is the CPU-side scene state a frame is recorded from.
type SceneView struct {
	View       math.Mat4
	Projection math.Mat4
	Eye        math.Vec3

	// Zero when no model is loaded.
	ModelID       string
	ModelName     string
	MaterialCount int
	AnimationTime float32
}

func (s SceneView) HasModel() bool {
	return s.ModelID != ""
}
