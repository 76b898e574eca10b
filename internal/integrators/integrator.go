// Package integrators implements the explicit Runge-Kutta schemes used to
// advance a conserved field in time.
package integrators

import "github.com/darien0/fish/internal/dynamo"

// RHS evaluates the time derivative of a conserved field. Implementations
// may refresh the guard zones of u in place.
type RHS interface {
	Derivative(u *dynamo.Field) (*dynamo.Field, error)
}

// RHSFunc adapts a plain function to RHS.
type RHSFunc func(u *dynamo.Field) (*dynamo.Field, error)

func (f RHSFunc) Derivative(u *dynamo.Field) (*dynamo.Field, error) { return f(u) }

// Integrator advances u0 by one step of size dt. The returned field is
// newly allocated; u0 keeps its interior values.
type Integrator interface {
	Name() string
	Order() int
	Step(rhs RHS, u0 *dynamo.Field, dt float64) (*dynamo.Field, error)
}

// ForOrder returns the scheme of the requested order, 1 through 4.
func ForOrder(order int) (Integrator, error) {
	switch order {
	case 1:
		return NewEuler(), nil
	case 2:
		return NewRK2(), nil
	case 3:
		return NewRK3(), nil
	case 4:
		return NewRK4(), nil
	}
	return nil, dynamo.Configurationf("unsupported Runge-Kutta order %d (want 1-4)", order)
}

// combine writes a*x + b*(y + dt*l) into dst, element by element.
func combine(dst, x, y, l []float64, a, b, dt float64) {
	for i := range dst {
		dst[i] = a*x[i] + b*(y[i]+dt*l[i])
	}
}
