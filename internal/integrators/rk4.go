package integrators

import "github.com/darien0/fish/internal/dynamo"

// RK4 is the classic four-stage scheme.
type RK4 struct {
	k1, k2, k3 *dynamo.Field
	scratch    *dynamo.Field
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Name() string { return "rk4" }
func (r *RK4) Order() int   { return 4 }

func (r *RK4) Step(rhs RHS, u0 *dynamo.Field, dt float64) (*dynamo.Field, error) {
	r.k1 = ensureScratch(r.k1, u0)
	r.k2 = ensureScratch(r.k2, u0)
	r.k3 = ensureScratch(r.k3, u0)
	r.scratch = ensureScratch(r.scratch, u0)
	x := u0.Data()
	n := len(x)

	k1, err := rhs.Derivative(u0)
	if err != nil {
		return nil, err
	}
	copy(r.k1.Data(), k1.Data())

	combine(r.scratch.Data(), x, x, r.k1.Data(), 0, 1, dt*0.5)
	k2, err := rhs.Derivative(r.scratch)
	if err != nil {
		return nil, err
	}
	copy(r.k2.Data(), k2.Data())

	combine(r.scratch.Data(), x, x, r.k2.Data(), 0, 1, dt*0.5)
	k3, err := rhs.Derivative(r.scratch)
	if err != nil {
		return nil, err
	}
	copy(r.k3.Data(), k3.Data())

	combine(r.scratch.Data(), x, x, r.k3.Data(), 0, 1, dt)
	k4, err := rhs.Derivative(r.scratch)
	if err != nil {
		return nil, err
	}

	result := dynamo.NewField(u0.Grid(), u0.Nq())
	out, a, b, c, d := result.Data(), r.k1.Data(), r.k2.Data(), r.k3.Data(), k4.Data()
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		out[i] = x[i] + dt6*(a[i]+2*b[i]+2*c[i]+d[i])
	}
	return result, nil
}
