// Package textutil sanitizes user supplied names for use in file and lock
// paths.
package textutil
