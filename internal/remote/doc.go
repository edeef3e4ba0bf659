// Package remote coordinates discovery, the ECP client and the app catalog
// into the operations a remote-control interface needs.
//
// A Controller owns the current device address, the app catalog and a single
// status line. Every operation reports its outcome by overwriting the status;
// errors from the network or parser never reach the caller as error values.
//
// # Usage Example
//
//	ctrl := remote.New(ecp.NewClient(), discovery.NewScanner(), registry)
//	ctrl.SetAddress(ctx, "192.168.1.42")
//	ctrl.SendKey(ctx, "Home")
//	fmt.Println(ctrl.Snapshot().Status)
//
// # Concurrency
//
// Operations block until the device answers. Interfaces that must stay
// responsive run them with Go, which starts the operation on its own
// goroutine. Operations are never queued or cancelled by the controller: two
// overlapping refreshes both complete and the last to finish wins.
// State changes are serialized and published to OnChange listeners.
package remote
