// Package profile computes per-class frequency statistics of labeled sensor
// windows.
//
// [Profile] groups windows by label, averages their channel power spectra and
// summarizes each class with a dominant frequency, an active range, a
// centroid and the share of energy in five fixed bands. The result feeds the
// period recommender in package recommend.
package profile
