package physics

import (
	"math"

	"github.com/darien0/fish/internal/dynamo"
)

// DefaultGamma is the adiabatic index of a diatomic gas.
const DefaultGamma = 1.4

func PrimToCons(gamma float64, p, u []float64) {
	rho := p[dynamo.Density]
	vx, vy, vz := p[2], p[3], p[4]
	u[dynamo.Density] = rho
	u[dynamo.Energy] = p[dynamo.Pressure]/(gamma-1) + 0.5*rho*(vx*vx+vy*vy+vz*vz)
	u[2] = rho * vx
	u[3] = rho * vy
	u[4] = rho * vz
}

func ConsToPrim(gamma float64, u, p []float64) {
	rho := u[dynamo.Density]
	vx, vy, vz := u[2]/rho, u[3]/rho, u[4]/rho
	p[dynamo.Density] = rho
	p[dynamo.Pressure] = (gamma - 1) * (u[dynamo.Energy] - 0.5*rho*(vx*vx+vy*vy+vz*vz))
	p[2] = vx
	p[3] = vy
	p[4] = vz
}

// Flux writes the physical flux of primitive state p along axis into f.
func Flux(gamma float64, p []float64, axis int, f []float64) {
	rho, pre := p[dynamo.Density], p[dynamo.Pressure]
	vx, vy, vz := p[2], p[3], p[4]
	vn := p[dynamo.VelocityX+axis]
	e := pre/(gamma-1) + 0.5*rho*(vx*vx+vy*vy+vz*vz)

	f[dynamo.Density] = rho * vn
	f[dynamo.Energy] = (e + pre) * vn
	f[2] = rho * vx * vn
	f[3] = rho * vy * vn
	f[4] = rho * vz * vn
	f[dynamo.MomentumX+axis] += pre
}

func SoundSpeed(gamma float64, p []float64) float64 {
	return math.Sqrt(gamma * p[dynamo.Pressure] / p[dynamo.Density])
}
