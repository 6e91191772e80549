package component

import "github.com/milk9111/gridstep/common"

// Motion drives a body every tick. A non-empty Script overrides Velocity with
// whatever the script sets for vx and vy.
type Motion struct {
	Velocity common.Vec
	Script   string
}

var MotionComponent = NewComponent[*Motion]()
