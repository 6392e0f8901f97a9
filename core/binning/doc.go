// Package binning assigns continuous credit scores to ordinal risk bands.
// The default cut points split the unit interval into Low, Medium and High
// bands; records without a score map to the Missing band.
package binning
