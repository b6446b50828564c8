package tensor

import (
	"errors"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	x, err := New(2, 3)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	assertEqualShape(t, Shape{2, 3}, x.Shape(), "shape")
	if x.Size() != 6 || x.Rank() != 2 {
		t.Errorf("Size/Rank = %d/%d, want 6/2", x.Size(), x.Rank())
	}
	assertAllEqual(t, x, 0, "New")

	if _, err := New(); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("New(): expected ErrInvalidArgument, got %v", err)
	}
	if _, err := New(2, -3); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("New(2,-3): expected ErrInvalidArgument, got %v", err)
	}
}

func TestZeroValueTensor(t *testing.T) {
	var x Tensor
	if x.Size() != 0 || x.Rank() != 0 {
		t.Errorf("zero value has Size %d Rank %d", x.Size(), x.Rank())
	}
	if _, err := x.At(); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("At on zero value: expected ErrInvalidArgument, got %v", err)
	}
	if _, err := x.Slice(0, 0); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Slice on zero value: expected ErrInvalidArgument, got %v", err)
	}
}

func TestSetShape(t *testing.T) {
	x := Must(FromArray([]float32{1, 2, 3, 4}, Shape{4}))

	if err := x.SetShape(Shape{2, 3}); err != nil {
		t.Fatalf("SetShape: %v", err)
	}
	assertEqualShape(t, Shape{2, 3}, x.Shape(), "grown shape")
	want := []float32{1, 2, 3, 4, 0, 0}
	for i, v := range x.Storage() {
		assertEqualFloat32(t, want[i], v, "grown storage")
	}

	if err := x.SetShape(Shape{2}); err != nil {
		t.Fatalf("SetShape: %v", err)
	}
	if x.Size() != 2 {
		t.Errorf("shrunk Size = %d, want 2", x.Size())
	}
	if err := x.SetShape(Shape{}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("empty shape: expected ErrInvalidArgument, got %v", err)
	}
}

func TestAtSet(t *testing.T) {
	x := Must(New(2, 3))
	if err := x.Set(7, 1, 2); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, err := x.At(1, 2)
	if err != nil {
		t.Fatalf("At: %v", err)
	}
	assertEqualFloat32(t, 7, v, "At(1,2)")
	assertEqualFloat32(t, 7, x.Storage()[5], "row-major position")

	if err := x.Set(1, 2, 0); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Set out of range: expected ErrOutOfRange, got %v", err)
	}
	if _, err := x.At(0); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("At with too few indices: expected ErrInvalidArgument, got %v", err)
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	x := Must(New(2, 3))
	s := x.Shape()
	s[0] = 99
	st := x.Strides()
	st[0] = 99
	assertEqualShape(t, Shape{2, 3}, x.Shape(), "shape after mutating copy")
	if x.Strides()[0] != 3 {
		t.Errorf("strides mutated through copy: %v", x.Strides())
	}
	if x.Dim(-1) != 3 || x.Dim(0) != 2 {
		t.Errorf("Dim(-1)/Dim(0) = %d/%d", x.Dim(-1), x.Dim(0))
	}
}

func TestClone(t *testing.T) {
	x := Must(FromArray([]float32{1, 2, 3}, Shape{3}))
	c := x.Clone()
	c.Storage()[0] = 100
	assertEqualFloat32(t, 1, x.Storage()[0], "original after clone mutation")
}

func TestReshape(t *testing.T) {
	x := Must(FromArray([]float32{1, 2, 3, 4, 5, 6}, Shape{2, 3}))
	r, err := x.Reshape(3, 2)
	if err != nil {
		t.Fatalf("Reshape: %v", err)
	}
	assertEqualShape(t, Shape{3, 2}, r.Shape(), "reshaped")
	for i, v := range r.Storage() {
		assertEqualFloat32(t, float32(i+1), v, "storage order")
	}

	if _, err := x.Reshape(4, 2); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("size mismatch: expected ErrInvalidArgument, got %v", err)
	}
}

func TestSliceAndIndex(t *testing.T) {
	x := Must(FromArray([]float32{1, 2, 3, 4, 5, 6}, Shape{3, 2}))

	s, err := x.Slice(1, 3)
	if err != nil {
		t.Fatalf("Slice: %v", err)
	}
	assertEqualShape(t, Shape{2, 2}, s.Shape(), "slice shape")
	assertEqualFloat32(t, 3, s.Storage()[0], "slice start")

	row, err := x.Index(2)
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	assertEqualShape(t, Shape{2}, row.Shape(), "row shape")
	assertEqualFloat32(t, 6, row.Storage()[1], "row value")

	if _, err := x.Slice(2, 4); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("slice past end: expected ErrOutOfRange, got %v", err)
	}

	v := Must(FromArray([]float32{4, 5}, Shape{2}))
	e, err := v.Index(1)
	if err != nil {
		t.Fatalf("Index rank 1: %v", err)
	}
	assertEqualShape(t, Shape{1}, e.Shape(), "rank-1 index shape")
}

func TestPrint(t *testing.T) {
	x := Must(FromArray([]float32{1, 2, 3, 4}, Shape{2, 2}))
	var sb strings.Builder
	x.PrintShape(&sb)
	x.Print(&sb)
	out := sb.String()
	if !strings.Contains(out, "shape: [2 2]") {
		t.Errorf("PrintShape output missing shape: %q", out)
	}
	if !strings.Contains(out, "[[1, 2],\n [3, 4]]") {
		t.Errorf("Print output = %q", out)
	}
}
