// Package addressing derives a stable control-endpoint address for a
// session from its terminal identity and publishes it for discovery.
//
// Ports are assigned deterministically inside a reserved slice of the
// dynamic port range, so any client that knows a session's terminal
// identity can compute its port without consulting the discovery
// record. The record exists for clients that only know "a session is
// running on this terminal" and for liveness verification.
package addressing

import (
	"fmt"
	"hash/fnv"
)

const (
	// PortRangeStart is the first port handed out to sessions. The range
	// sits inside the IANA dynamic/private block so it never collides
	// with registered services.
	PortRangeStart = 49300
	// PortRangeSize bounds how many distinct ports identities can map to.
	PortRangeSize = 600
	// DefaultPort is the last-resort address clients probe when neither
	// a discovery record nor a derived port answers.
	DefaultPort = PortRangeStart
)

// PortFromIdentity maps a terminal identity onto its session port.
// The mapping is a pure function of the identity, so the same terminal
// always gets the same port across restarts.
func PortFromIdentity(identity string) int {
	h := fnv.New32a()
	h.Write([]byte(identity))
	return PortRangeStart + int(h.Sum32()%PortRangeSize)
}

// ChoosePort returns the port a session should listen on: the explicit
// override when one is configured, the derived port otherwise.
func ChoosePort(identity string, override int) int {
	if override > 0 {
		return override
	}
	return PortFromIdentity(identity)
}

// LoopbackAddr formats a port as a loopback bind/dial address. Sessions
// only ever listen on the loopback interface.
func LoopbackAddr(port int) string {
	return fmt.Sprintf("127.0.0.1:%d", port)
}
