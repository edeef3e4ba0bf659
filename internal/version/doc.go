// Package version reports the build version of rokuctl, from ldflags when
// set and otherwise from the module build info.
package version
