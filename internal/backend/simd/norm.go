package simd

import (
	"math"

	"github.com/ajroetker/go-highway/hwy"

	"github.com/splinedrive/BinaryBrain/internal/backend"
	"github.com/splinedrive/BinaryBrain/internal/tensor"
)

// NormForward computes batch statistics and the affine rescale per node
// with vectorized frame loops.
func (b *Backend) NormForward(x, y *tensor.FrameBuffer, st *backend.NormState, training bool) error {
	if err := backend.CheckNorm(x, y, st); err != nil {
		return err
	}
	lanes := hwy.MaxLanes[float32]()
	scratch := make([]float32, lanes)

	for node := 0; node < x.NumNodes(); node++ {
		xs := x.NodeFloat32(node)
		ys := y.NodeFloat32(node)

		var mean, rstd float32
		if training {
			var variance float32
			mean, variance = meanVar(xs, lanes, scratch)

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

		vscale := hwy.Set(scale)
		vbias := hwy.Set(bias)
		i := 0
		for ; i+lanes <= len(xs); i += lanes {
			v := hwy.Load(xs[i:])
			hwy.Store(hwy.MulAdd(v, vscale, vbias), ys[i:])
		}
		for ; i < len(xs); i++ {
			ys[i] = xs[i]*scale + bias
		}
	}
	return nil
}

// NormBackward propagates dy through the batch normalization; same
// reduction formula as the scalar backend, lane-parallel.
func (b *Backend) NormBackward(x, dy, dx *tensor.FrameBuffer, st *backend.NormState) error {
	if err := backend.CheckNorm(x, dy, st); err != nil {
		return err
	}
	if err := backend.CheckNorm(x, dx, st); err != nil {
		return err
	}
	lanes := hwy.MaxLanes[float32]()
	scratch := make([]float32, lanes)
	frames := float32(x.NumFrames())

	for node := 0; node < x.NumNodes(); node++ {
		xs := x.NodeFloat32(node)
		dys := dy.NodeFloat32(node)
		dxs := dx.NodeFloat32(node)

		mean := st.Mean[node]
		rstd := st.Rstd[node]
		gamma := st.Gamma[node]

		vdbeta := newVecAccumulator()
		vdgamma := newVecAccumulator()
		vdstd := newVecAccumulator()
		vdmeanx := newVecAccumulator()

		vmean := hwy.Set(mean)
		vrstd := hwy.Set(rstd)
		vgamma := hwy.Set(gamma)
		vnegr2 := hwy.Set(-rstd * rstd)
		vnegr := hwy.Set(-rstd)

		i := 0
		for ; i+lanes <= len(xs); i += lanes {
			xv := hwy.Load(xs[i:])
			dv := hwy.Load(dys[i:])
			xc := hwy.Sub(xv, vmean)
			xn := hwy.Mul(xc, vrstd)
			vdbeta.Add(dv)
			vdgamma.Add(hwy.Mul(xn, dv))
			dxn := hwy.Mul(vgamma, dv)
			vdstd.Add(hwy.Mul(hwy.Mul(dxn, xc), vnegr2))
			vdmeanx.Add(hwy.Mul(dxn, vnegr))
		}

		var dbeta, dgamma, dstd, dmeanx backend.Accumulator
		vdbeta.Fold(&dbeta, scratch)
		vdgamma.Fold(&dgamma, scratch)
		vdstd.Fold(&dstd, scratch)
		vdmeanx.Fold(&dmeanx, scratch)
		for ; i < len(xs); i++ {
			xc := xs[i] - mean
			xn := xc * rstd
			d := dys[i]
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

		vscale := hwy.Set(gamma * rstd)
		vdvarN := hwy.Set(dvar / frames)
		vdmean := hwy.Set(dmean)
		i = 0
		for ; i+lanes <= len(xs); i += lanes {
			xv := hwy.Load(xs[i:])
			dv := hwy.Load(dys[i:])
			hwy.Store(hwy.MulAdd(dv, vscale, hwy.MulAdd(xv, vdvarN, vdmean)), dxs[i:])
		}
		for ; i < len(xs); i++ {
			dxs[i] = dys[i]*gamma*rstd + dmean + xs[i]*dvar/frames
		}
	}
	return nil
}

// meanVar computes mean and variance across frames with vector Kahan
// partials and a compensated lane fold.
func meanVar(xs []float32, lanes int, scratch []float32) (mean, variance float32) {
	vsum := newVecAccumulator()
	vsumsq := newVecAccumulator()
	i := 0
	for ; i+lanes <= len(xs); i += lanes {
		v := hwy.Load(xs[i:])
		vsum.Add(v)
		vsumsq.Add(hwy.Mul(v, v))
	}
	var sum, sumsq backend.Accumulator
	vsum.Fold(&sum, scratch)
	vsumsq.Fold(&sumsq, scratch)
	for ; i < len(xs); i++ {
		sum.Add(xs[i])
		sumsq.Add(xs[i] * xs[i])
	}
	n := float32(len(xs))
	mean = sum.Sum() / n
	variance = sumsq.Sum()/n - mean*mean
	if variance < 0 {
		variance = 0
	}
	return mean, variance
}

// rsqrt returns 1/sqrt(max(eps, v)).
func rsqrt(v, eps float32) float32 {
	if v < eps {
		v = eps
	}
	return float32(1.0 / math.Sqrt(float64(v)))
}
