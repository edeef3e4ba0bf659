// Package ecp provides an HTTP client for Roku's External Control Protocol.
//
// ECP is an unauthenticated HTTP API exposed by Roku devices on port 8060.
// Queries are plain GET requests returning XML documents, and commands are
// POST requests with an empty body:
//
//	GET  /query/apps            installed application catalog
//	GET  /query/device-info     model, serial and network details
//	POST /keypress/<key>        press and release a remote key
//	POST /keydown/<key>         hold a remote key
//	POST /keyup/<key>           release a held key
//	POST /launch/<app-id>       start an application
//
// # Usage Example
//
//	client := ecp.NewClient()
//
//	body, err := client.Fetch(ctx, "192.168.1.42", "/query/apps")
//	if err != nil {
//	    fmt.Println(ecp.ShortMessage(err))
//	    return
//	}
//
//	if _, err := client.Command(ctx, "192.168.1.42", ecp.KeypressPath("Home")); err != nil {
//	    log.Printf("keypress failed: %v", err)
//	}
//
// # Error Handling
//
// Every failure is returned as a *DeviceError carrying an ErrorType. A device
// with "Control by mobile apps" disabled answers commands with HTTP 403, which
// surfaces as ErrTypeHTTP with StatusCode 403 and is distinguishable from
// transport failures such as ErrTypeTimeout.
//
// The client performs exactly one round trip per call and never retries.
//
// # Thread Safety
//
// Client holds no per-request state and is safe for concurrent use.
package ecp
