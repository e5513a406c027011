// Package temporal implements the multi-period temporal decomposition model.
//
// A [Model] embeds a (batch, seqLen, channels) input to dModel features, runs
// it through a stack of [Block]s that fold the sequence by each selected
// period into a 2D grid, and projects the flattened result to class logits or
// a single anomaly score.
//
// The period policy and all shapes are fixed by the [Topology] at
// construction. A model built with a fixed or default period source has no
// data-dependent shapes and can be exported to a static graph; an adaptive
// model cannot (see [Model.CheckExportable]).
package temporal
