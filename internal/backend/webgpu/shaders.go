//go:build windows

package webgpu

// workgroupSize is the default number of threads per workgroup.
const workgroupSize = 256

// binaryShader builds an elementwise shader computing result = <expr> over a and b.
func binaryShader(expr string) string {
	return `
@group(0) @binding(0) var<storage, read> a: array<f32>;
@group(0) @binding(1) var<storage, read> b: array<f32>;
@group(0) @binding(2) var<storage, read_write> result: array<f32>;

struct Params {
    size: u32,
}
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let idx = global_id.x;
    if (idx < params.size) {
        result[idx] = ` + expr + `;
    }
}
`
}

// unaryShader builds an elementwise shader computing result = <expr> over x.
func unaryShader(expr string) string {
	return `
@group(0) @binding(0) var<storage, read> input: array<f32>;
@group(0) @binding(1) var<storage, read_write> result: array<f32>;

struct Params {
    size: u32,
}
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let idx = global_id.x;
    if (idx < params.size) {
        let x = input[idx];
        result[idx] = ` + expr + `;
    }
}
`
}

var (
	addShader     = binaryShader("a[idx] + b[idx]")
	subShader     = binaryShader("a[idx] - b[idx]")
	mulShader     = binaryShader("a[idx] * b[idx]")
	divShader     = binaryShader("a[idx] / b[idx]")
	sqrtShader    = unaryShader("sqrt(x)")
	reluShader    = unaryShader("max(x, 0.0)")
	sigmoidShader = unaryShader("1.0 / (1.0 + exp(-x) + 1e-7)")
)

// matmulShader computes C = A @ B for A [M, K], B [K, N].
const matmulShader = `
@group(0) @binding(0) var<storage, read> a: array<f32>;
@group(0) @binding(1) var<storage, read> b: array<f32>;
@group(0) @binding(2) var<storage, read_write> result: array<f32>;

struct Params {
    M: u32,  // rows of A and C
    K: u32,  // cols of A, rows of B
    N: u32,  // cols of B and C
}
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(16, 16)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let row = global_id.y;
    let col = global_id.x;

    if (row >= params.M || col >= params.N) {
        return;
    }

    var sum: f32 = 0.0;
    for (var k: u32 = 0u; k < params.K; k = k + 1u) {
        sum = sum + a[row * params.K + k] * b[k * params.N + col];
    }

    result[row * params.N + col] = sum;
}
`

// softmaxShader normalizes each row of a [rows, cols] buffer; one thread per row.
const softmaxShader = `
@group(0) @binding(0) var<storage, read> input: array<f32>;
@group(0) @binding(1) var<storage, read_write> result: array<f32>;

struct Params {
    rows: u32,
    cols: u32,
}
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let row = global_id.x;
    if (row >= params.rows) {
        return;
    }

    let offset = row * params.cols;

    var max_val: f32 = input[offset];
    for (var i: u32 = 1u; i < params.cols; i = i + 1u) {
        max_val = max(max_val, input[offset + i]);
    }

    var sum: f32 = 0.0;
    for (var i: u32 = 0u; i < params.cols; i = i + 1u) {
        let e = exp(input[offset + i] - max_val);
        result[offset + i] = e;
        sum = sum + e;
    }

    for (var i: u32 = 0u; i < params.cols; i = i + 1u) {
        result[offset + i] = result[offset + i] / sum;
    }
}
`
