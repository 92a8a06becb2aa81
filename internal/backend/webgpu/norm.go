package webgpu

import (
	"fmt"
	"math"

	"github.com/go-webgpu/webgpu/wgpu"

	"github.com/splinedrive/BinaryBrain/internal/backend"
	"github.com/splinedrive/BinaryBrain/internal/tensor"
)

// normParams mirrors the Params uniform struct in the WGSL shaders.
// 16 bytes, no padding needed.
type normParams struct {
	frames   uint32
	stride   uint32
	momentum float32
	eps      float32
}

func (p normParams) bytes() []byte {
	buf := make([]byte, 16)
	le32(buf[0:], p.frames)
	le32(buf[4:], p.stride)
	le32(buf[8:], math.Float32bits(p.momentum))
	le32(buf[12:], math.Float32bits(p.eps))
	return buf
}

func le32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

// NormForward normalizes x into y, one workgroup per node. In training
// mode the batch statistics are reduced on the device and the running
// averages plus saved mean/rstd are read back into st.
func (b *Backend) NormForward(x, y *tensor.FrameBuffer, st *backend.NormState, training bool) error {
	if err := backend.CheckNorm(x, y, st); err != nil {
		return err
	}

	nodes := x.NumNodes()
	params := normParams{
		frames:   uint32(x.NumFrames()),
		stride:   uint32(x.Stride()),
		momentum: st.Momentum,
		eps:      st.Eps,
	}
	frameBytes := uint64(x.ByteSize())
	nodeBytes := uint64(nodes) * 4

	xBuf := b.createBuffer(f32Bytes(x.AsFloat32()), wgpu.BufferUsageStorage)
	defer xBuf.Release()
	yBuf := b.createBuffer(make([]byte, frameBytes), wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc)
	defer yBuf.Release()
	gammaBuf := b.createBuffer(f32Bytes(st.Gamma), wgpu.BufferUsageStorage)
	defer gammaBuf.Release()
	betaBuf := b.createBuffer(f32Bytes(st.Beta), wgpu.BufferUsageStorage)
	defer betaBuf.Release()
	rMeanBuf := b.createBuffer(f32Bytes(st.RunningMean), wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc)
	defer rMeanBuf.Release()
	rVarBuf := b.createBuffer(f32Bytes(st.RunningVar), wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc)
	defer rVarBuf.Release()
	paramsBuf := b.createUniformBuffer(params.bytes())
	defer paramsBuf.Release()

	var pipeline *wgpu.ComputePipeline
	var bindGroup *wgpu.BindGroup
	var meanBuf, rstdBuf *wgpu.Buffer

	if training {
		meanBuf = b.createBuffer(make([]byte, nodeBytes), wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc)
		defer meanBuf.Release()
		rstdBuf = b.createBuffer(make([]byte, nodeBytes), wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc)
		defer rstdBuf.Release()

		shader := b.compileShader("norm_train", normTrainShader)
		pipeline = b.getOrCreatePipeline("norm_train", shader)
		bindGroup = b.device.CreateBindGroupSimple(pipeline.GetBindGroupLayout(0), []wgpu.BindGroupEntry{
			wgpu.BufferBindingEntry(0, xBuf, 0, frameBytes),
			wgpu.BufferBindingEntry(1, yBuf, 0, frameBytes),
			wgpu.BufferBindingEntry(2, gammaBuf, 0, nodeBytes),
			wgpu.BufferBindingEntry(3, betaBuf, 0, nodeBytes),
			wgpu.BufferBindingEntry(4, rMeanBuf, 0, nodeBytes),
			wgpu.BufferBindingEntry(5, rVarBuf, 0, nodeBytes),
			wgpu.BufferBindingEntry(6, meanBuf, 0, nodeBytes),
			wgpu.BufferBindingEntry(7, rstdBuf, 0, nodeBytes),
			wgpu.BufferBindingEntry(8, paramsBuf, 0, 16),
		})
	} else {
		shader := b.compileShader("norm_infer", normInferShader)
		pipeline = b.getOrCreatePipeline("norm_infer", shader)
		bindGroup = b.device.CreateBindGroupSimple(pipeline.GetBindGroupLayout(0), []wgpu.BindGroupEntry{
			wgpu.BufferBindingEntry(0, xBuf, 0, frameBytes),
			wgpu.BufferBindingEntry(1, yBuf, 0, frameBytes),
			wgpu.BufferBindingEntry(2, gammaBuf, 0, nodeBytes),
			wgpu.BufferBindingEntry(3, betaBuf, 0, nodeBytes),
			wgpu.BufferBindingEntry(4, rMeanBuf, 0, nodeBytes),
			wgpu.BufferBindingEntry(5, rVarBuf, 0, nodeBytes),
			wgpu.BufferBindingEntry(6, paramsBuf, 0, 16),
		})
	}
	defer bindGroup.Release()

	b.dispatch(pipeline, bindGroup, uint32(nodes))

	yBytes, err := b.readBuffer(yBuf, frameBytes)
	if err != nil {
		return fmt.Errorf("failed to read normalized output: %w", err)
	}
	copy(y.AsFloat32(), bytesF32(yBytes))
	y.SetResidency(tensor.HostValid)

	if training {
		for name, rb := range map[string]struct {
			buf *wgpu.Buffer
			dst []float32
		}{
			"running mean": {rMeanBuf, st.RunningMean},
			"running var":  {rVarBuf, st.RunningVar},
			"batch mean":   {meanBuf, st.Mean},
			"batch rstd":   {rstdBuf, st.Rstd},
		} {
			raw, err := b.readBuffer(rb.buf, nodeBytes)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", name, err)
			}
			copy(rb.dst, bytesF32(raw))
		}
	}

	return nil
}

// NormBackward computes dx, dgamma and dbeta from the statistics saved
// by the last training forward pass.
func (b *Backend) NormBackward(x, dy, dx *tensor.FrameBuffer, st *backend.NormState) error {
	if err := backend.CheckNorm(x, dy, st); err != nil {
		return err
	}
	if err := backend.CheckNorm(x, dx, st); err != nil {
		return err
	}

	nodes := x.NumNodes()
	params := normParams{
		frames:   uint32(x.NumFrames()),
		stride:   uint32(x.Stride()),
		momentum: st.Momentum,
		eps:      st.Eps,
	}
	frameBytes := uint64(x.ByteSize())
	nodeBytes := uint64(nodes) * 4

	xBuf := b.createBuffer(f32Bytes(x.AsFloat32()), wgpu.BufferUsageStorage)
	defer xBuf.Release()
	dyBuf := b.createBuffer(f32Bytes(dy.AsFloat32()), wgpu.BufferUsageStorage)
	defer dyBuf.Release()
	dxBuf := b.createBuffer(make([]byte, frameBytes), wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc)
	defer dxBuf.Release()
	gammaBuf := b.createBuffer(f32Bytes(st.Gamma), wgpu.BufferUsageStorage)
	defer gammaBuf.Release()
	meanBuf := b.createBuffer(f32Bytes(st.Mean), wgpu.BufferUsageStorage)
	defer meanBuf.Release()
	rstdBuf := b.createBuffer(f32Bytes(st.Rstd), wgpu.BufferUsageStorage)
	defer rstdBuf.Release()
	dgammaBuf := b.createBuffer(make([]byte, nodeBytes), wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc)
	defer dgammaBuf.Release()
	dbetaBuf := b.createBuffer(make([]byte, nodeBytes), wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc)
	defer dbetaBuf.Release()
	paramsBuf := b.createUniformBuffer(params.bytes())
	defer paramsBuf.Release()

	shader := b.compileShader("norm_backward", normBackwardShader)
	pipeline := b.getOrCreatePipeline("norm_backward", shader)
	bindGroup := b.device.CreateBindGroupSimple(pipeline.GetBindGroupLayout(0), []wgpu.BindGroupEntry{
		wgpu.BufferBindingEntry(0, xBuf, 0, frameBytes),
		wgpu.BufferBindingEntry(1, dyBuf, 0, frameBytes),
		wgpu.BufferBindingEntry(2, dxBuf, 0, frameBytes),
		wgpu.BufferBindingEntry(3, gammaBuf, 0, nodeBytes),
		wgpu.BufferBindingEntry(4, meanBuf, 0, nodeBytes),
		wgpu.BufferBindingEntry(5, rstdBuf, 0, nodeBytes),
		wgpu.BufferBindingEntry(6, dgammaBuf, 0, nodeBytes),
		wgpu.BufferBindingEntry(7, dbetaBuf, 0, nodeBytes),
		wgpu.BufferBindingEntry(8, paramsBuf, 0, 16),
	})
	defer bindGroup.Release()

	b.dispatch(pipeline, bindGroup, uint32(nodes))

	dxBytes, err := b.readBuffer(dxBuf, frameBytes)
	if err != nil {
		return fmt.Errorf("failed to read input gradient: %w", err)
	}
	copy(dx.AsFloat32(), bytesF32(dxBytes))
	dx.SetResidency(tensor.HostValid)

	dgBytes, err := b.readBuffer(dgammaBuf, nodeBytes)
	if err != nil {
		return fmt.Errorf("failed to read dgamma: %w", err)
	}
	copy(st.DGamma, bytesF32(dgBytes))

	dbBytes, err := b.readBuffer(dbetaBuf, nodeBytes)
	if err != nil {
		return fmt.Errorf("failed to read dbeta: %w", err)
	}
	copy(st.DBeta, bytesF32(dbBytes))

	return nil
}

// dispatch runs one workgroup per node.
func (b *Backend) dispatch(pipeline *wgpu.ComputePipeline, bindGroup *wgpu.BindGroup, nodes uint32) {
	encoder := b.device.CreateCommandEncoder(nil)
	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(pipeline)
	pass.SetBindGroup(0, bindGroup, nil)
	pass.DispatchWorkgroups(nodes, 1, 1)
	pass.End()
	cmdBuffer := encoder.Finish(nil)
	b.queue.Submit(cmdBuffer)
}
