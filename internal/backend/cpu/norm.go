package cpu

import (
	"math"

	"github.com/splinedrive/BinaryBrain/internal/backend"
	"github.com/splinedrive/BinaryBrain/internal/tensor"
)

// NormForward computes batch statistics and the affine rescale per node.
func (b *Backend) NormForward(x, y *tensor.FrameBuffer, st *backend.NormState, training bool) error {
	if err := backend.CheckNorm(x, y, st); err != nil {
		return err
	}
	nodes := x.NumNodes()
	b.pool.ParallelFor(nodes, func(start, end int) {
		for node := start; node < end; node++ {
			xs := x.NodeFloat32(node)
			ys := y.NodeFloat32(node)

			var mean, rstd float32
			if training {
				var variance float32
				mean, variance = meanVar(xs)

				m := st.Momentum
				st.RunningMean[node] = st.RunningMean[node]*m + mean*(1-m)
				st.RunningVar[node] = st.RunningVar[node]*m + variance*(1-m)

				rstd = rsqrt(variance, st.Eps)
				st.Mean[node] = mean
				st.Rstd[node] = rstd
			} else {
				mean = st.RunningMean[node]
				rstd = rsqrt(st.RunningVar[node], st.Eps)
			}

			scale := st.Gamma[node] * rstd
			bias := st.Beta[node] - mean*scale
			for i, v := range xs {
				ys[i] = v*scale + bias
			}
		}
	})
	return nil
}

// NormBackward propagates dy through the batch normalization, coupling the
// gradient through the batch mean and variance.
func (b *Backend) NormBackward(x, dy, dx *tensor.FrameBuffer, st *backend.NormState) error {
	if err := backend.CheckNorm(x, dy, st); err != nil {
		return err
	}
	if err := backend.CheckNorm(x, dx, st); err != nil {
		return err
	}
	frames := float32(x.NumFrames())
	nodes := x.NumNodes()
	b.pool.ParallelFor(nodes, func(start, end int) {
		for node := start; node < end; node++ {
			xs := x.NodeFloat32(node)
			dys := dy.NodeFloat32(node)
			dxs := dx.NodeFloat32(node)

			mean := st.Mean[node]
			rstd := st.Rstd[node]
			gamma := st.Gamma[node]

			var dbeta, dgamma, dstd, dmeanx backend.Accumulator
			for i, d := range dys {
				xc := xs[i] - mean
				xn := xc * rstd
				dbeta.Add(d)
				dgamma.Add(xn * d)
				dxn := gamma * d
				dstd.Add(-(dxn * xc) * rstd * rstd)
				dmeanx.Add(-(dxn * rstd))
			}
			st.DBeta[node] = dbeta.Sum()
			st.DGamma[node] = dgamma.Sum()

			dvar := dstd.Sum() * rstd
			dmean := (dmeanx.Sum() - mean*dvar) / frames
			for i, d := range dys {
				dxs[i] = d*gamma*rstd + dmean + xs[i]*dvar/frames
			}
		}
	})
	return nil
}

// rsqrt returns 1/sqrt(max(eps, v)).
func rsqrt(v, eps float32) float32 {
	if v < eps {
		v = eps
	}
	return float32(1.0 / math.Sqrt(float64(v)))
}
