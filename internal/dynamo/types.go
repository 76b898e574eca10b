package dynamo

// NumQ is the number of fluid quantities per cell.
const NumQ = 5

// Primitive layout: density, pressure, three velocity components.
// Conserved layout: density, total energy, three momentum components.
const (
	Density   = 0
	Pressure  = 1
	Energy    = 1
	VelocityX = 2
	MomentumX = 2
)

// FluidState holds the primitive array and converts to and from conserved variables.
type FluidState interface {
	Grid() *Grid
	// FromConserved re-derives every primitive cell from u.
	FromConserved(u *Field) error
	// Conserved returns a freshly allocated conserved array.
	Conserved() *Field
	// Primitive returns the owned primitive array. Callers that modify it
	// must hand it back through SetPrimitive.
	Primitive() *Field
	SetPrimitive(p *Field) error
	// Eigenvalues returns the NumQ characteristic speeds per cell along axis.
	Eigenvalues(axis int) *Field
}

// Solver turns a line of N primitive states into N-1 intercell fluxes.
// Implementations must be safe for concurrent use on distinct lines.
type Solver interface {
	IntercellFlux(line [][]float64, axis int) ([][]float64, error)
}

// BoundaryCondition fills the ghost zones of f in place from its interior.
type BoundaryCondition interface {
	Apply(f *Field)
}

// SourceTerms contributes an additive conserved derivative on interior cells.
type SourceTerms interface {
	// Evaluate receives the interior primitive array and returns an
	// interior-shaped derivative.
	Evaluate(p *Field) (*Field, error)
	// Advance moves any internal time-dependent state by dt.
	Advance(dt float64)
}

// PrimitiveFunc gives the primitive state at a cell center.
type PrimitiveFunc func(x, y, z float64) [NumQ]float64

// Status is the bookkeeping of a running simulation. It is mutated once per
// iteration and embedded in every checkpoint.
type Status struct {
	Iteration        int     `json:"iteration" yaml:"iteration"`
	Time             float64 `json:"time_current" yaml:"time_current"`
	TimeStep         float64 `json:"time_step" yaml:"time_step"`
	CheckpointNumber int     `json:"chkpt_number" yaml:"chkpt_number"`
	LastCheckpoint   float64 `json:"chkpt_last" yaml:"chkpt_last"`
	Message          string  `json:"message,omitempty" yaml:"message,omitempty"`
}
