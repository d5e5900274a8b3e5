package camera

import (
	"github.com/SakulFlee/Orbital-sub000/common"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	positionEpsilon = 0.001
	angleEpsilon    = 0.0001
)

// Transform is a change to one camera's position and orientation. Nil fields are ignored.
type Transform struct {
	Label    string
	Position *common.Mode[mgl32.Vec3]
	Pitch    *common.Mode[float32]
	Yaw      *common.Mode[float32]
}

// IsIntroducingChange reports whether applying the transform could move the camera.
// Components below 0.001 (position) or 0.0001 (angles) count as no change.
func (t Transform) IsIntroducingChange() bool {
	if t.Position != nil {
		v := t.Position.Value
		if math32.Abs(v[0]) >= positionEpsilon || math32.Abs(v[1]) >= positionEpsilon || math32.Abs(v[2]) >= positionEpsilon {
			return true
		}
	}
	if t.Yaw != nil && math32.Abs(t.Yaw.Value) >= angleEpsilon {
		return true
	}
	if t.Pitch != nil && math32.Abs(t.Pitch.Value) >= angleEpsilon {
		return true
	}
	return false
}
