package integrators

import "github.com/darien0/fish/internal/dynamo"

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string { return "euler" }
func (e *Euler) Order() int   { return 1 }

func (e *Euler) Step(rhs RHS, u0 *dynamo.Field, dt float64) (*dynamo.Field, error) {
	l, err := rhs.Derivative(u0)
	if err != nil {
		return nil, err
	}
	result := dynamo.NewField(u0.Grid(), u0.Nq())
	combine(result.Data(), u0.Data(), u0.Data(), l.Data(), 0, 1, dt)
	return result, nil
}
