// Package urls provides centralized constants for the documentation URLs
// printed by the CLI and the remote screen.
//
// Usage:
//
//	import "github.com/muurk/rokuctl/internal/urls"
//
//	fmt.Printf("Key names: %s\n", urls.KeyValues)
package urls
