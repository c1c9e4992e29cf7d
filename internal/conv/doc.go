// Package conv provides checked integer conversions for values read from archive
// headers and other untrusted input.
package conv
