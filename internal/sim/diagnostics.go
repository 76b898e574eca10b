package sim

import (
	"fmt"
	"time"

	"github.com/darien0/fish/internal/dynamo"
)

// Diagnostics describes one iteration for the progress line.
type Diagnostics struct {
	Iteration int
	Rank      int
	Time      float64
	Dt        float64
	Wall      time.Duration
	Zones     int
}

// String formats the iteration as
// "iteration(rank): t=time dt=step <kilozones/s>kz/s <microseconds per zone-quantity>us/(z*Nq)".
func (d Diagnostics) String() string {
	wall := d.Wall.Seconds()
	zones := float64(d.Zones)
	return fmt.Sprintf("%05d(%d): t=%5.4f dt=%5.4e %3.1fkz/s %3.2fus/(z*Nq)",
		d.Iteration, d.Rank, d.Time, d.Dt,
		(zones/wall)*1e-3,
		(wall/(zones*dynamo.NumQ))*1e6)
}
