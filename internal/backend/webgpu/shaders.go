package webgpu

// workgroupSize is the number of threads cooperating on one node's
// frame reduction. Must match the @workgroup_size in the shaders.
const workgroupSize = 256

// normTrainShader computes per-node batch statistics with a cooperative
// tree reduction (one workgroup per node), updates the running averages,
// and normalizes every frame. Per-thread partial sums use compensated
// accumulation before the shared-memory combine.
const normTrainShader = `
struct Params {
    frames: u32,
    stride: u32,
    momentum: f32,
    eps: f32,
}

@group(0) @binding(0) var<storage, read> x: array<f32>;
@group(0) @binding(1) var<storage, read_write> y: array<f32>;
@group(0) @binding(2) var<storage, read> gamma: array<f32>;
@group(0) @binding(3) var<storage, read> beta: array<f32>;
@group(0) @binding(4) var<storage, read_write> running_mean: array<f32>;
@group(0) @binding(5) var<storage, read_write> running_var: array<f32>;
@group(0) @binding(6) var<storage, read_write> mean_out: array<f32>;
@group(0) @binding(7) var<storage, read_write> rstd_out: array<f32>;
@group(0) @binding(8) var<uniform> params: Params;

var<workgroup> wg_sum: array<f32, 256>;
var<workgroup> wg_sq: array<f32, 256>;
var<workgroup> wg_mean: f32;
var<workgroup> wg_rstd: f32;

@compute @workgroup_size(256)
fn main(@builtin(workgroup_id) wid: vec3<u32>,
        @builtin(local_invocation_id) lid: vec3<u32>) {
    let node = wid.x;
    let tid = lid.x;
    let base = node * params.stride;
    let n = f32(params.frames);

    var sum = 0.0;
    var sum_c = 0.0;
    var sq = 0.0;
    var sq_c = 0.0;
    for (var f: u32 = tid; f < params.frames; f = f + 256u) {
        let v = x[base + f];
        var yk = v - sum_c;
        var tk = sum + yk;
        sum_c = (tk - sum) - yk;
        sum = tk;
        yk = v * v - sq_c;
        tk = sq + yk;
        sq_c = (tk - sq) - yk;
        sq = tk;
    }
    wg_sum[tid] = sum - sum_c;
    wg_sq[tid] = sq - sq_c;

    for (var s: u32 = 1u; s < 256u; s = s * 2u) {
        workgroupBarrier();
        if (tid % (2u * s) == 0u) {
            wg_sum[tid] = wg_sum[tid] + wg_sum[tid + s];
            wg_sq[tid] = wg_sq[tid] + wg_sq[tid + s];
        }
    }
    workgroupBarrier();

    if (tid == 0u) {
        let mean = wg_sum[0] / n;
        var variance = wg_sq[0] / n - mean * mean;
        variance = max(variance, 0.0);
        running_mean[node] = running_mean[node] * params.momentum + mean * (1.0 - params.momentum);
        running_var[node] = running_var[node] * params.momentum + variance * (1.0 - params.momentum);
        let rstd = inverseSqrt(max(variance, params.eps));
        mean_out[node] = mean;
        rstd_out[node] = rstd;
        wg_mean = mean;
        wg_rstd = rstd;
    }
    workgroupBarrier();

    let scale = gamma[node] * wg_rstd;
    let bias = beta[node] - wg_mean * scale;
    for (var f: u32 = tid; f < params.frames; f = f + 256u) {
        y[base + f] = x[base + f] * scale + bias;
    }
}
`

// normInferShader normalizes against the fixed running statistics. No
// reduction is needed, so each invocation handles one element.
const normInferShader = `
struct Params {
    frames: u32,
    stride: u32,
    momentum: f32,
    eps: f32,
}

@group(0) @binding(0) var<storage, read> x: array<f32>;
@group(0) @binding(1) var<storage, read_write> y: array<f32>;
@group(0) @binding(2) var<storage, read> gamma: array<f32>;
@group(0) @binding(3) var<storage, read> beta: array<f32>;
@group(0) @binding(4) var<storage, read> running_mean: array<f32>;
@group(0) @binding(5) var<storage, read> running_var: array<f32>;
@group(0) @binding(6) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(workgroup_id) wid: vec3<u32>,
        @builtin(local_invocation_id) lid: vec3<u32>) {
    let node = wid.x;
    let base = node * params.stride;
    let rstd = inverseSqrt(max(running_var[node], params.eps));
    let scale = gamma[node] * rstd;
    let bias = beta[node] - running_mean[node] * scale;
    for (var f: u32 = lid.x; f < params.frames; f = f + 256u) {
        y[base + f] = x[base + f] * scale + bias;
    }
}
`

// normBackwardShader computes parameter gradients and dx from the saved
// batch statistics, using the same workgroup-per-node reduction as the
// forward pass. Four shared partial arrays carry the per-thread sums.
const normBackwardShader = `
struct Params {
    frames: u32,
    stride: u32,
    momentum: f32,
    eps: f32,
}

@group(0) @binding(0) var<storage, read> x: array<f32>;
@group(0) @binding(1) var<storage, read> dy: array<f32>;
@group(0) @binding(2) var<storage, read_write> dx: array<f32>;
@group(0) @binding(3) var<storage, read> gamma: array<f32>;
@group(0) @binding(4) var<storage, read> mean_in: array<f32>;
@group(0) @binding(5) var<storage, read> rstd_in: array<f32>;
@group(0) @binding(6) var<storage, read_write> dgamma: array<f32>;
@group(0) @binding(7) var<storage, read_write> dbeta: array<f32>;
@group(0) @binding(8) var<uniform> params: Params;

var<workgroup> wg_dbeta: array<f32, 256>;
var<workgroup> wg_dgamma: array<f32, 256>;
var<workgroup> wg_dstd: array<f32, 256>;
var<workgroup> wg_dmeanx: array<f32, 256>;
var<workgroup> wg_dvar: f32;
var<workgroup> wg_dmean: f32;

@compute @workgroup_size(256)
fn main(@builtin(workgroup_id) wid: vec3<u32>,
        @builtin(local_invocation_id) lid: vec3<u32>) {
    let node = wid.x;
    let tid = lid.x;
    let base = node * params.stride;
    let n = f32(params.frames);
    let mean = mean_in[node];
    let rstd = rstd_in[node];
    let g = gamma[node];

    var s_dbeta = 0.0;
    var s_dgamma = 0.0;
    var s_dstd = 0.0;
    var s_dmeanx = 0.0;
    for (var f: u32 = tid; f < params.frames; f = f + 256u) {
        let xc = x[base + f] - mean;
        let d = dy[base + f];
        let dxn = g * d;
        s_dbeta = s_dbeta + d;
        s_dgamma = s_dgamma + xc * rstd * d;
        s_dstd = s_dstd - dxn * xc * rstd * rstd;
        s_dmeanx = s_dmeanx - dxn * rstd;
    }
    wg_dbeta[tid] = s_dbeta;
    wg_dgamma[tid] = s_dgamma;
    wg_dstd[tid] = s_dstd;
    wg_dmeanx[tid] = s_dmeanx;

    for (var s: u32 = 1u; s < 256u; s = s * 2u) {
        workgroupBarrier();
        if (tid % (2u * s) == 0u) {
            wg_dbeta[tid] = wg_dbeta[tid] + wg_dbeta[tid + s];
            wg_dgamma[tid] = wg_dgamma[tid] + wg_dgamma[tid + s];
            wg_dstd[tid] = wg_dstd[tid] + wg_dstd[tid + s];
            wg_dmeanx[tid] = wg_dmeanx[tid] + wg_dmeanx[tid + s];
        }
    }
    workgroupBarrier();

    if (tid == 0u) {
        dbeta[node] = wg_dbeta[0];
        dgamma[node] = wg_dgamma[0];
        let dvar = wg_dstd[0] * rstd;
        wg_dvar = dvar;
        wg_dmean = (wg_dmeanx[0] - mean * dvar) / n;
    }
    workgroupBarrier();

    let dvar = wg_dvar;
    let dmean = wg_dmean;
    for (var f: u32 = tid; f < params.frames; f = f + 256u) {
        dx[base + f] = dy[base + f] * g * rstd + dmean + x[base + f] * dvar / n;
    }
}
`
