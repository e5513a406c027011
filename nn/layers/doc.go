// Package layers implements the inference-side building blocks of the temporal
// model: affine projection, 2D convolution, layer normalization, dropout and
// the GELU activation.
//
// Layers are immutable after construction apart from their weight slices,
// which an external trainer or checkpoint loader may overwrite through
// [Param]. Forward never mutates its input.
package layers
