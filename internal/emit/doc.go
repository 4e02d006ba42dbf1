// Package emit renders wrapped procedures as extension module source and
// the matching declaration file.
package emit
