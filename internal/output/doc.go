// Package output manages the folder generated documents are written to.
//
// The folder must already exist: a mistyped path is a setup error, not something
// to create silently. A leading ~/ expands to the user's home directory.
package output
