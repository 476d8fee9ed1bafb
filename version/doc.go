// Package version reports the harness version, used in the default
// User-Agent of test clients.
package version
