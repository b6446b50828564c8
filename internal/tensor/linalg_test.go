package tensor

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"
)

func TestMatmulIdentity(t *testing.T) {
	a := Must(FromRows([][]float32{{1, 2}, {3, 4}}))
	c, err := Matmul(a, Must(Eye(Shape{2, 2})))
	if err != nil {
		t.Fatalf("Matmul: %v", err)
	}
	for i, v := range c.Storage() {
		assertEqualFloat32(t, a.Storage()[i], v, "A @ I")
	}
}

func TestMatmul(t *testing.T) {
	a := Must(FromRows([][]float32{{1, 2, 3}, {4, 5, 6}}))
	b := Must(FromRows([][]float32{{7, 8}, {9, 10}, {11, 12}}))
	c, err := Matmul(a, b)
	if err != nil {
		t.Fatalf("Matmul: %v", err)
	}
	assertEqualShape(t, Shape{2, 2}, c.Shape(), "Matmul")
	want := []float32{58, 64, 139, 154}
	for i, v := range c.Storage() {
		assertEqualFloat32(t, want[i], v, "Matmul")
	}

	if _, err := Matmul(a, a); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("inner mismatch: expected ErrInvalidArgument, got %v", err)
	}
	if _, err := Matmul(Must(Ones(Shape{3})), b); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("rank 1: expected ErrInvalidArgument, got %v", err)
	}
}

func TestMatmulBatched(t *testing.T) {
	a := Must(Random(Shape{3, 4, 5}, rand.NewPCG(1, 1)))
	b := Must(Random(Shape{3, 5, 2}, rand.NewPCG(2, 2)))
	c, err := Matmul(a, b)
	if err != nil {
		t.Fatalf("Matmul: %v", err)
	}
	assertEqualShape(t, Shape{3, 4, 2}, c.Shape(), "batched")

	for bi := 0; bi < 3; bi++ {
		ai := Must(a.Index(bi))
		bj := Must(b.Index(bi))
		ci := Must(c.Index(bi))
		ref := Must(Matmul(ai, bj))
		for i, v := range ci.Storage() {
			assertEqualFloat32(t, ref.Storage()[i], v, "batch slice")
		}
	}

	if _, err := Matmul(a, Must(Ones(Shape{2, 5, 2}))); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("batch mismatch: expected ErrInvalidArgument, got %v", err)
	}
}

func TestMatmulPropagatesNaN(t *testing.T) {
	a := Must(FromRows([][]float32{{0, 1}}))
	b := Must(FromRows([][]float32{{float32(math.NaN())}, {1}}))
	c := Must(Matmul(a, b))
	if !math.IsNaN(float64(c.Storage()[0])) {
		t.Errorf("0*NaN should propagate, got %v", c.Storage()[0])
	}
}

func TestDot(t *testing.T) {
	d, err := Dot(Must(Ones(Shape{2})), Must(Ones(Shape{2})))
	if err != nil {
		t.Fatalf("Dot: %v", err)
	}
	assertEqualShape(t, Shape{1}, d.Shape(), "Dot rank 1")
	assertEqualFloat32(t, 2, d.Storage()[0], "Dot rank 1")

	a := Must(FromRows([][]float32{{1, 2}, {3, 4}}))
	rows, err := Dot(a, a)
	if err != nil {
		t.Fatalf("Dot: %v", err)
	}
	assertEqualShape(t, Shape{2}, rows.Shape(), "Dot rank 2")
	assertEqualFloat32(t, 5, rows.Storage()[0], "row 0")
	assertEqualFloat32(t, 25, rows.Storage()[1], "row 1")

	if _, err := Dot(a, Must(Ones(Shape{2}))); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("shape mismatch: expected ErrInvalidArgument, got %v", err)
	}
}

func TestTranspose(t *testing.T) {
	a := Must(FromRows([][]float32{{1, 2, 3}, {4, 5, 6}}))
	at, err := Transpose(a)
	if err != nil {
		t.Fatalf("Transpose: %v", err)
	}
	assertEqualShape(t, Shape{3, 2}, at.Shape(), "transposed")
	want := []float32{1, 4, 2, 5, 3, 6}
	for i, v := range at.Storage() {
		assertEqualFloat32(t, want[i], v, "transposed")
	}

	back := Must(Transpose(at))
	for i, v := range back.Storage() {
		assertEqualFloat32(t, a.Storage()[i], v, "double transpose")
	}

	batch := Must(Random(Shape{2, 3, 4}, rand.NewPCG(3, 3)))
	bt := Must(Transpose(batch))
	assertEqualShape(t, Shape{2, 4, 3}, bt.Shape(), "batched transpose")
	v1, _ := batch.At(1, 2, 3)
	v2, _ := bt.At(1, 3, 2)
	assertEqualFloat32(t, v1, v2, "batched element")

	if _, err := Transpose(Must(Ones(Shape{3}))); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("rank 1: expected ErrInvalidArgument, got %v", err)
	}
}

func TestConcat(t *testing.T) {
	a := Must(FromArray([]float32{1, 2}, Shape{2}))
	b := Must(FromArray([]float32{3, 4}, Shape{2}))
	c, err := Concat([]*Tensor{a, b})
	if err != nil {
		t.Fatalf("Concat: %v", err)
	}
	assertEqualShape(t, Shape{2, 2}, c.Shape(), "Concat")
	assertEqualFloat32(t, 3, c.Storage()[2], "second tensor")

	if _, err := Concat(nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("empty: expected ErrInvalidArgument, got %v", err)
	}
	if _, err := Concat([]*Tensor{a, Must(Ones(Shape{3}))}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("mismatch: expected ErrInvalidArgument, got %v", err)
	}
}

func BenchmarkMatmul(b *testing.B) {
	for _, n := range []int{32, 128, 256} {
		x := Must(Random(Shape{n, n}, rand.NewPCG(1, 1)))
		y := Must(Random(Shape{n, n}, rand.NewPCG(2, 2)))
		b.Run(Shape{n, n}.String(), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				_, _ = Matmul(x, y)
			}
		})
	}
}
