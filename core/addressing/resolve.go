package addressing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ErrUnverified reports that no candidate port answered a liveness
// probe. The accompanying port is the best guess (the derived port) and
// may still be worth dialing; it just could not be confirmed.
var ErrUnverified = errors.New("no live session answered at any candidate port")

const probeTimeout = 500 * time.Millisecond

var probeClient = &http.Client{
	Transport: otelhttp.NewTransport(http.DefaultTransport),
	Timeout:   probeTimeout,
}

// Resolve finds the control port of the session bound to identity. It
// tries, in order: the published discovery record, the derived port,
// every other published record in the discovery directory, and the
// default port, checking each for liveness. A stale record (the session
// crashed without retracting it) is skipped the same way an absent one
// is.
func Resolve(ctx context.Context, identity string, opts ...RecordOption) (int, error) {
	candidates := make([]int, 0, 4)
	if port, ok := Lookup(identity, opts...); ok {
		candidates = append(candidates, port)
	}
	candidates = append(candidates, PortFromIdentity(identity))
	candidates = append(candidates, ScanRecords(opts...)...)
	candidates = append(candidates, DefaultPort)

	seen := map[int]bool{}
	for _, port := range candidates {
		if seen[port] {
			continue
		}
		seen[port] = true
		if Probe(ctx, port) {
			return port, nil
		}
	}

	return PortFromIdentity(identity), ErrUnverified
}

// Probe reports whether a session's control server answers on port.
func Probe(ctx context.Context, port int) bool {
	url := fmt.Sprintf("http://%s/status", LoopbackAddr(port))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}

	resp, err := probeClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}
