package integrators

import "github.com/darien0/fish/internal/dynamo"

// RK2 is the two-stage strong-stability-preserving scheme.
type RK2 struct {
	stage *dynamo.Field
}

func NewRK2() *RK2 {
	return &RK2{}
}

func (r *RK2) Name() string { return "rk2" }
func (r *RK2) Order() int   { return 2 }

func (r *RK2) Step(rhs RHS, u0 *dynamo.Field, dt float64) (*dynamo.Field, error) {
	r.stage = ensureScratch(r.stage, u0)
	x := u0.Data()

	l, err := rhs.Derivative(u0)
	if err != nil {
		return nil, err
	}
	combine(r.stage.Data(), x, x, l.Data(), 0, 1, dt)

	l, err = rhs.Derivative(r.stage)
	if err != nil {
		return nil, err
	}
	result := dynamo.NewField(u0.Grid(), u0.Nq())
	combine(result.Data(), x, r.stage.Data(), l.Data(), 0.5, 0.5, dt)
	return result, nil
}

// RK3 is the three-stage scheme of Shu and Osher.
type RK3 struct {
	s1, s2 *dynamo.Field
}

func NewRK3() *RK3 {
	return &RK3{}
}

func (r *RK3) Name() string { return "rk3" }
func (r *RK3) Order() int   { return 3 }

func (r *RK3) Step(rhs RHS, u0 *dynamo.Field, dt float64) (*dynamo.Field, error) {
	r.s1 = ensureScratch(r.s1, u0)
	r.s2 = ensureScratch(r.s2, u0)
	x := u0.Data()

	l, err := rhs.Derivative(u0)
	if err != nil {
		return nil, err
	}
	combine(r.s1.Data(), x, x, l.Data(), 0, 1, dt)

	l, err = rhs.Derivative(r.s1)
	if err != nil {
		return nil, err
	}
	combine(r.s2.Data(), x, r.s1.Data(), l.Data(), 3.0/4.0, 1.0/4.0, dt)

	l, err = rhs.Derivative(r.s2)
	if err != nil {
		return nil, err
	}
	result := dynamo.NewField(u0.Grid(), u0.Nq())
	combine(result.Data(), x, r.s2.Data(), l.Data(), 1.0/3.0, 2.0/3.0, dt)
	return result, nil
}

// ensureScratch reuses buf when it matches the shape of like.
func ensureScratch(buf, like *dynamo.Field) *dynamo.Field {
	if buf == nil || !buf.SameShape(like) || buf.Grid() != like.Grid() {
		return dynamo.NewField(like.Grid(), like.Nq())
	}
	return buf
}
