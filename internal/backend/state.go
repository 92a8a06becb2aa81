package backend

// Default numerical constants for the normalization pipeline.
const (
	// DefaultEps floors the variance before the inverse square root so
	// near-constant inputs cannot blow up the normalization.
	DefaultEps float32 = 1e-7

	// DefaultMomentum is the exponential decay applied to running
	// statistics: running = running*momentum + batch*(1-momentum).
	DefaultMomentum float32 = 0.9
)

// NormState holds the per-node normalization state shared by all backends.
//
// Gamma/Beta persist across calls and are updated externally by an
// optimizer. RunningMean/RunningVar persist via exponential decay and are
// used at inference time. Mean/Rstd are transient: written by each
// training-mode forward, consumed by the paired backward. DGamma/DBeta are
// overwritten by every backward call.
type NormState struct {
	Gamma []float32
	Beta  []float32

	RunningMean []float32
	RunningVar  []float32

	Mean []float32
	Rstd []float32

	DGamma []float32
	DBeta  []float32

	Eps      float32
	Momentum float32
}

// NewNormState allocates state for the given node count. Gamma is filled
// with gammaInit, beta with betaInit, running mean with zero and running
// variance with one.
func NewNormState(nodes int, gammaInit, betaInit, eps, momentum float32) *NormState {
	st := &NormState{
		Gamma:       make([]float32, nodes),
		Beta:        make([]float32, nodes),
		RunningMean: make([]float32, nodes),
		RunningVar:  make([]float32, nodes),
		Mean:        make([]float32, nodes),
		Rstd:        make([]float32, nodes),
		DGamma:      make([]float32, nodes),
		DBeta:       make([]float32, nodes),
		Eps:         eps,
		Momentum:    momentum,
	}
	for i := 0; i < nodes; i++ {
		st.Gamma[i] = gammaInit
		st.Beta[i] = betaInit
		st.RunningVar[i] = 1
	}
	return st
}

// Nodes returns the node count the state was allocated for.
func (st *NormState) Nodes() int { return len(st.Gamma) }
