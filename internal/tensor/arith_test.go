package tensor

import (
	"errors"
	"math"
	"testing"
)

func TestAddBroadcastOuter(t *testing.T) {
	a := Must(Ones(Shape{3, 1}))
	b := Must(Ones(Shape{1, 4}))
	c, err := Add(a, b)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	assertEqualShape(t, Shape{3, 4}, c.Shape(), "Add broadcast")
	assertAllEqual(t, c, 2, "Add broadcast")
}

func TestBinaryOps(t *testing.T) {
	a := Must(FromArray([]float32{1, 2, 3, 4, 5, 6}, Shape{2, 3}))
	row := Must(FromArray([]float32{10, 20, 30}, Shape{3}))

	tests := []struct {
		name string
		op   func(a, b *Tensor) (*Tensor, error)
		want []float32
	}{
		{"Add", Add, []float32{11, 22, 33, 14, 25, 36}},
		{"Sub", Sub, []float32{-9, -18, -27, -6, -15, -24}},
		{"Mul", Mul, []float32{10, 40, 90, 40, 100, 180}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.op(a, row)
			if err != nil {
				t.Fatalf("%s: %v", tt.name, err)
			}
			assertEqualShape(t, Shape{2, 3}, got.Shape(), tt.name)
			for i, v := range got.Storage() {
				assertEqualFloat32(t, tt.want[i], v, tt.name)
			}
		})
	}
}

func TestBinaryOpIncompatible(t *testing.T) {
	a := Must(Ones(Shape{2, 3}))
	b := Must(Ones(Shape{2, 4}))
	if _, err := Add(a, b); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
	if _, err := Mul(a, &Tensor{}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("uninitialized operand: expected ErrInvalidArgument, got %v", err)
	}
}

func TestDivPolicies(t *testing.T) {
	a := Must(FromArray([]float32{1, 6}, Shape{2}))
	b := Must(FromArray([]float32{0, 3}, Shape{2}))

	eps, err := Div(a, b)
	if err != nil {
		t.Fatalf("Div: %v", err)
	}
	if v := eps.Storage()[0]; math.IsInf(float64(v), 0) || v < 1e6 {
		t.Errorf("epsilon division by zero = %v, want large finite value", v)
	}
	assertEqualFloat32(t, 2, eps.Storage()[1], "6/3 under epsilon")

	ieee, err := DivWithPolicy(a, b, IEEEDivision)
	if err != nil {
		t.Fatalf("DivWithPolicy: %v", err)
	}
	if !math.IsInf(float64(ieee.Storage()[0]), 1) {
		t.Errorf("IEEE 1/0 = %v, want +Inf", ieee.Storage()[0])
	}
	if ieee.Storage()[1] != 2 {
		t.Errorf("IEEE 6/3 = %v, want 2", ieee.Storage()[1])
	}
}

func TestParseDivisionPolicy(t *testing.T) {
	for _, p := range []DivisionPolicy{EpsilonDivision, IEEEDivision} {
		got, err := ParseDivisionPolicy(p.String())
		if err != nil || got != p {
			t.Errorf("ParseDivisionPolicy(%q) = %v, %v", p.String(), got, err)
		}
	}
	if got, err := ParseDivisionPolicy(""); err != nil || got != EpsilonDivision {
		t.Errorf("empty name should default to epsilon, got %v, %v", got, err)
	}
	if _, err := ParseDivisionPolicy("fast"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("unknown policy: expected ErrInvalidArgument, got %v", err)
	}
}

func TestEqual(t *testing.T) {
	a := Must(FromArray([]float32{1, 2, 3}, Shape{3}))
	b := Must(FromArray([]float32{1, 0, 3}, Shape{3}))
	eq, err := Equal(a, b)
	if err != nil {
		t.Fatalf("Equal: %v", err)
	}
	want := []float32{1, 0, 1}
	for i, v := range eq.Storage() {
		assertEqualFloat32(t, want[i], v, "Equal")
	}
}

func TestScalarOps(t *testing.T) {
	x := Must(FromArray([]float32{2, 4}, Shape{2}))

	tests := []struct {
		name string
		got  *Tensor
		want []float32
	}{
		{"AddScalar", AddScalar(x, 1), []float32{3, 5}},
		{"SubScalar", SubScalar(x, 1), []float32{1, 3}},
		{"ScalarSub", ScalarSub(10, x), []float32{8, 6}},
		{"MulScalar", MulScalar(x, 3), []float32{6, 12}},
		{"DivScalar", DivScalarWithPolicy(x, 2, IEEEDivision), []float32{1, 2}},
		{"ScalarDiv", ScalarDivWithPolicy(8, x, IEEEDivision), []float32{4, 2}},
	}
	for _, tt := range tests {
		for i, v := range tt.got.Storage() {
			assertEqualFloat32(t, tt.want[i], v, tt.name)
		}
	}

	if v := ScalarDiv(1, Must(Zeros(Shape{1}))).Storage()[0]; math.IsInf(float64(v), 0) {
		t.Errorf("ScalarDiv by zero under epsilon = %v, want finite", v)
	}
	assertEqualFloat32(t, 1, DivScalar(x, 2).Storage()[0], "DivScalar epsilon")
}

func TestActivations(t *testing.T) {
	x := Must(FromArray([]float32{-2, 0, 3}, Shape{3}))

	relu := ReLU(x)
	want := []float32{0, 0, 3}
	for i, v := range relu.Storage() {
		assertEqualFloat32(t, want[i], v, "ReLU")
	}

	sig := Sigmoid(x)
	assertEqualFloat32(t, 0.5, sig.Storage()[1], "Sigmoid(0)")
	for _, v := range sig.Storage() {
		if v <= 0 || v >= 1 {
			t.Errorf("Sigmoid value %v outside (0,1)", v)
		}
	}

	assertEqualFloat32(t, 1, Exp(x).Storage()[1], "Exp(0)")
	if v := Log(Must(Zeros(Shape{1}))).Storage()[0]; math.IsInf(float64(v), 0) {
		t.Errorf("Log(0) = %v, want finite", v)
	}
	assertEqualFloat32(t, 3, Sqrt(Must(Fill(Shape{1}, 9))).Storage()[0], "Sqrt(9)")
}

func BenchmarkAdd(b *testing.B) {
	x := Must(Ones(Shape{256, 256}))
	y := Must(Ones(Shape{256, 256}))
	col := Must(Ones(Shape{256, 1}))

	b.Run("same shape", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = Add(x, y)
		}
	})

	b.Run("broadcast", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = Add(x, col)
		}
	})
}
