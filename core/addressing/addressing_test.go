package addressing

import (
	"testing"
)

func TestPortFromIdentityIsStable(t *testing.T) {
	first := PortFromIdentity("A")
	for i := 0; i < 10; i++ {
		if got := PortFromIdentity("A"); got != first {
			t.Fatalf("expected stable port %d, got %d", first, got)
		}
	}
}

func TestPortFromIdentityDistinguishesIdentities(t *testing.T) {
	portA := PortFromIdentity("A")
	portB := PortFromIdentity("B")
	if portA == portB {
		t.Fatalf("expected different ports for identities A and B, both got %d", portA)
	}
}

func TestPortFromIdentityStaysInRange(t *testing.T) {
	identities := []string{"", "A", "B", "/dev/pts/3", "tty-with-a-very-long-identity-string"}
	for _, identity := range identities {
		port := PortFromIdentity(identity)
		if port < PortRangeStart || port >= PortRangeStart+PortRangeSize {
			t.Fatalf("port %d for identity %q escaped the reserved range", port, identity)
		}
	}
}

func TestChoosePortHonoursOverride(t *testing.T) {
	if got := ChoosePort("A", 9000); got != 9000 {
		t.Fatalf("expected override port 9000, got %d", got)
	}
	if got := ChoosePort("A", 0); got != PortFromIdentity("A") {
		t.Fatalf("expected derived port without override, got %d", got)
	}
}
