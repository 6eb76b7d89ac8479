// Package protocol defines the wire format spoken between the process runner and a worker.
//
// Every message is a frame: a 4-byte little-endian unsigned length followed by that many
// bytes of UTF-8 JSON. Requests and responses strictly alternate; a worker never sends
// anything it was not asked for.
//
// Subject objects never cross the boundary by value. They travel as references,
//
//	{"type": "Member", "id": 3}
//	{"type": "Integer", "id": 4, "val": 7}
//
// where id is a session-scoped integer assigned by the host on first sighting and val
// carries the value of a scalar object. Any JSON object whose only keys are type, id
// and val, with a string type and a numeric id, is read as a reference.
// A worker returns the same reference to mean the same object.
package protocol
