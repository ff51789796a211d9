// Package utils provides small shared helpers, currently glob matching for
// account name selectors.
package utils
