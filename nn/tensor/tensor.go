// Package tensor provides a dense, row-major float64 tensor with the handful
// of layout operations the temporal decomposition needs: reshape, permute,
// narrowing and zero-padding along one axis.
package tensor

import (
	"errors"
	"fmt"
)

// ErrShape is returned when tensor shapes are incompatible with an operation.
var ErrShape = errors.New("tensor: shape mismatch")

// Tensor is a dense row-major array. The zero value is an empty scalar-less
// tensor; use New or FromData.
type Tensor struct {
	shape []int
	data  []float64
}

// New returns a zero-filled tensor of the given shape.
func New(shape ...int) *Tensor {
	return &Tensor{shape: append([]int(nil), shape...), data: make([]float64, volume(shape))}
}

// FromData wraps data with the given shape without copying.
func FromData(data []float64, shape ...int) (*Tensor, error) {
	if v := volume(shape); v != len(data) {
		return nil, fmt.Errorf("%w: %d values for shape %v (%d)", ErrShape, len(data), shape, v)
	}
	return &Tensor{shape: append([]int(nil), shape...), data: data}, nil
}

func volume(shape []int) int {
	v := 1
	for _, d := range shape {
		if d < 0 {
			return -1
		}
		v *= d
	}
	return v
}

// Shape returns a copy of the tensor's shape.
func (t *Tensor) Shape() []int { return append([]int(nil), t.shape...) }

// Rank returns the number of axes.
func (t *Tensor) Rank() int { return len(t.shape) }

// Dim returns the size of axis i.
func (t *Tensor) Dim(i int) int { return t.shape[i] }

// Len returns the total number of elements.
func (t *Tensor) Len() int { return len(t.data) }

// Data returns the backing slice. Writes are visible to the tensor.
func (t *Tensor) Data() []float64 { return t.data }

// Clone returns a deep copy.
func (t *Tensor) Clone() *Tensor {
	return &Tensor{shape: t.Shape(), data: append([]float64(nil), t.data...)}
}

// offset converts a multi-index into a flat offset.
func (t *Tensor) offset(idx []int) int {
	if len(idx) != len(t.shape) {
		panic(fmt.Sprintf("tensor: index rank %d for shape %v", len(idx), t.shape))
	}
	off := 0
	for i, x := range idx {
		if x < 0 || x >= t.shape[i] {
			panic(fmt.Sprintf("tensor: index %v out of range for shape %v", idx, t.shape))
		}
		off = off*t.shape[i] + x
	}
	return off
}

// At returns the element at idx.
func (t *Tensor) At(idx ...int) float64 { return t.data[t.offset(idx)] }

// Set stores v at idx.
func (t *Tensor) Set(v float64, idx ...int) { t.data[t.offset(idx)] = v }

// SameShape reports whether t and u have identical shapes.
func (t *Tensor) SameShape(u *Tensor) bool {
	if len(t.shape) != len(u.shape) {
		return false
	}
	for i := range t.shape {
		if t.shape[i] != u.shape[i] {
			return false
		}
	}
	return true
}

// Reshape returns a view of t with a new shape. The element count must match.
func (t *Tensor) Reshape(shape ...int) (*Tensor, error) {
	if volume(shape) != len(t.data) {
		return nil, fmt.Errorf("%w: reshape %v to %v", ErrShape, t.shape, shape)
	}
	return &Tensor{shape: append([]int(nil), shape...), data: t.data}, nil
}

func strides(shape []int) []int {
	s := make([]int, len(shape))
	acc := 1
	for i := len(shape) - 1; i >= 0; i-- {
		s[i] = acc
		acc *= shape[i]
	}
	return s
}

// Permute returns a copy of t with its axes reordered: output axis i is input
// axis axes[i].
func (t *Tensor) Permute(axes ...int) (*Tensor, error) {
	rank := len(t.shape)
	if len(axes) != rank {
		return nil, fmt.Errorf("%w: permute %v with axes %v", ErrShape, t.shape, axes)
	}
	seen := make([]bool, rank)
	outShape := make([]int, rank)
	for i, a := range axes {
		if a < 0 || a >= rank || seen[a] {
			return nil, fmt.Errorf("%w: invalid permutation %v", ErrShape, axes)
		}
		seen[a] = true
		outShape[i] = t.shape[a]
	}

	inStrides := strides(t.shape)
	// Input stride for each output axis.
	srcStride := make([]int, rank)
	for i, a := range axes {
		srcStride[i] = inStrides[a]
	}

	out := New(outShape...)
	if len(out.data) == 0 {
		return out, nil
	}

	idx := make([]int, rank)
	src := 0
	for dst := range out.data {
		out.data[dst] = t.data[src]
		// Odometer increment over the output index.
		for ax := rank - 1; ax >= 0; ax-- {
			idx[ax]++
			src += srcStride[ax]
			if idx[ax] < outShape[ax] {
				break
			}
			src -= srcStride[ax] * outShape[ax]
			idx[ax] = 0
		}
	}
	return out, nil
}

// Narrow returns a copy of the range [start, start+length) along axis.
func (t *Tensor) Narrow(axis, start, length int) (*Tensor, error) {
	if axis < 0 || axis >= len(t.shape) || start < 0 || length < 0 || start+length > t.shape[axis] {
		return nil, fmt.Errorf("%w: narrow axis %d [%d,%d) of %v", ErrShape, axis, start, start+length, t.shape)
	}
	outShape := t.Shape()
	outShape[axis] = length
	out := New(outShape...)

	outer, inner := splitAt(t.shape, axis)
	srcBlock := t.shape[axis] * inner
	dstBlock := length * inner
	for o := range outer {
		copy(out.data[o*dstBlock:(o+1)*dstBlock], t.data[o*srcBlock+start*inner:o*srcBlock+(start+length)*inner])
	}
	return out, nil
}

// PadAxis returns a copy of t with after zero entries appended along axis.
func (t *Tensor) PadAxis(axis, after int) (*Tensor, error) {
	if axis < 0 || axis >= len(t.shape) || after < 0 {
		return nil, fmt.Errorf("%w: pad axis %d by %d of %v", ErrShape, axis, after, t.shape)
	}
	outShape := t.Shape()
	outShape[axis] += after
	out := New(outShape...)

	outer, inner := splitAt(t.shape, axis)
	srcBlock := t.shape[axis] * inner
	dstBlock := outShape[axis] * inner
	for o := range outer {
		copy(out.data[o*dstBlock:], t.data[o*srcBlock:(o+1)*srcBlock])
	}
	return out, nil
}

// splitAt returns the product of dims before axis and after axis.
func splitAt(shape []int, axis int) (outer, inner int) {
	outer, inner = 1, 1
	for i, d := range shape {
		switch {
		case i < axis:
			outer *= d
		case i > axis:
			inner *= d
		}
	}
	return outer, inner
}

// AddInPlace adds u element-wise into t.
func (t *Tensor) AddInPlace(u *Tensor) error {
	if !t.SameShape(u) {
		return fmt.Errorf("%w: add %v and %v", ErrShape, t.shape, u.shape)
	}
	for i, v := range u.data {
		t.data[i] += v
	}
	return nil
}

// ScaleInPlace multiplies every element by s.
func (t *Tensor) ScaleInPlace(s float64) {
	for i := range t.data {
		t.data[i] *= s
	}
}

// Apply replaces every element x by fn(x).
func (t *Tensor) Apply(fn func(float64) float64) {
	for i, v := range t.data {
		t.data[i] = fn(v)
	}
}

// String returns a short description of the tensor's shape.
func (t *Tensor) String() string {
	return fmt.Sprintf("Tensor%v", t.shape)
}
