// Package services wires the docref components from configuration.
//
// Build creates the embedding gateway, document resolver, compression
// service and reference expander; both binaries use the resulting Registry
// and release it with Close.
package services
