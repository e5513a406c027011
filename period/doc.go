// Package period decides which period lengths a temporal block folds its
// input by.
//
// A [Source] is chosen once at model construction and resolved against the
// sequence length into a [Selector]:
//
//   - [Adaptive] picks the top-k dominant frequencies of each input batch and
//     converts them to periods. Shapes then depend on the data, so models using
//     it cannot be exported to a static graph.
//   - [Fixed] uses a caller-supplied ordered list and ignores spectral content.
//   - [Default] is the absence of a list and resolves to the dyadic cascade
//     [T, T/2, T/4, T/8, T/16].
//
// Every period is clamped to at least [MinPeriod].
package period
