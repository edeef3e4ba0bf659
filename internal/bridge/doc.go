// Package bridge exposes the remote controller over HTTP and WebSocket so a
// phone or browser on the LAN can drive the device.
//
// # Endpoints
//
//   - GET /api/state returns the current snapshot as JSON
//   - GET /ws upgrades to a WebSocket
//
// # WebSocket Protocol
//
// Clients send JSON requests naming an operation:
//
//	{"op": "key", "key": "Home"}
//	{"op": "keydown", "key": "Right"}
//	{"op": "keyup", "key": "Right"}
//	{"op": "launch", "name": "Netflix", "id": "12"}
//	{"op": "type", "text": "star trek"}
//	{"op": "refresh"}
//	{"op": "discover", "timeout": 3}
//	{"op": "address", "address": "192.168.1.42"}
//	{"op": "info"}
//
// The server pushes {"type": "state", "state": {...}} on connect and after
// every state change, {"type": "info", "info": {...}} in answer to an info
// request and {"type": "error", "error": "..."} for requests it cannot
// decode. Operations run asynchronously; their outcome arrives as a state
// push.
package bridge
