// Package spectrum provides the real-input spectral primitives used for period
// selection and frequency profiling.
//
// An [Analyzer] computes one-sided power or amplitude spectra of real signals of
// a fixed length on an algo-fft plan. [BinFrequency] and [BinCount] map a
// transform size to its one-sided bins.
package spectrum
