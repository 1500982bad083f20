package collapse

import "github.com/go-gl/mathgl/mgl32"

// RigidBody is the debris physics state, adapted from
// Gekko3D-gekko/physics.go's RigidBodyComponent
// (Velocity/AngularVelocity/Mass/Sleeping/IdleTime, impulse application),
// simplified to the settle-or-timeout countdown spec.md §4.G calls for —
// no constraint solver, just free-fall integration plus a sleep test.
type RigidBody struct {
	Velocity        mgl32.Vec3
	AngularVelocity mgl32.Vec3
	Mass            float32
	Sleeping        bool
	IdleTime        float32
	Age             float32 // seconds awake since creation or the last Wake
}

// NewRigidBody returns an awake rigid body of the given mass.
func NewRigidBody(mass float32) *RigidBody {
	if mass <= 0 {
		mass = 1
	}
	return &RigidBody{Mass: mass}
}

// Wake clears the sleeping flag and resets the idle timer, mirroring
// RigidBodyComponent.Wake.
func (rb *RigidBody) Wake() {
	rb.Sleeping = false
	rb.IdleTime = 0
	rb.Age = 0
}

// ApplyLinearImpulse applies an instantaneous impulse, converting to a
// velocity delta by mass the same way ApplyLinearImpulse does in the
// teacher.
func (rb *RigidBody) ApplyLinearImpulse(impulse mgl32.Vec3) {
	rb.Wake()
	rb.Velocity = rb.Velocity.Add(impulse.Mul(1.0 / rb.Mass))
}

// ApplyAngularImpulse sets the initial angular velocity directly — the
// Collapse Engine precomputes this once from the cluster's geometry
// rather than deriving it from a torque/impulse-at-point pair, since
// there's no contact manifold to apply it at.
func (rb *RigidBody) ApplyAngularImpulse(angularVelocity mgl32.Vec3) {
	rb.Wake()
	rb.AngularVelocity = angularVelocity
}

const (
	gravityY             = float32(-9.81)
	linearSleepThreshold = float32(0.05)
	angularSleepThresh   = float32(0.05)
	settleTimeout        = float32(5.0) // seconds, spec.md §4.G "~5s or speeds below threshold"
)

// Integrate advances a debris body's position/rotation by dt, applying
// gravity and a simple rotation-by-angular-velocity update, and tracks
// how long the body has been under both sleep thresholds. The body goes to
// sleep once it has stayed under them for settleTimeout, or once it has
// been awake for settleTimeout in total, whichever comes first.
func (rb *RigidBody) Integrate(dt float32, pos *mgl32.Vec3, rot *mgl32.Quat) {
	if rb.Sleeping {
		return
	}
	rb.Age += dt
	rb.Velocity = rb.Velocity.Add(mgl32.Vec3{0, gravityY * dt, 0})
	*pos = pos.Add(rb.Velocity.Mul(dt))

	if w := rb.AngularVelocity.Len(); w > 1e-6 {
		axis := rb.AngularVelocity.Normalize()
		delta := mgl32.QuatRotate(w*dt, axis)
		*rot = delta.Mul(*rot).Normalize()
	}

	if rb.Velocity.Len() < linearSleepThreshold && rb.AngularVelocity.Len() < angularSleepThresh {
		rb.IdleTime += dt
	} else {
		rb.IdleTime = 0
	}
	if rb.IdleTime >= settleTimeout || rb.Age >= settleTimeout {
		rb.Sleeping = true
	}
}
