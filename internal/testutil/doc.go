// Package testutil contains builders shared by tests: sessions in a given
// dialogue position and orchestrators over scripted providers. Not intended
// for production usage.
package testutil
