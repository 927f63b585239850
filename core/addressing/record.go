package addressing

import (
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Record is a published terminal-identity → port mapping. It lives as a
// plain-text file in a well-known temp location so external clients can
// discover a running session without computing the derived port.
type Record struct {
	Identity string
	Port     int

	path string
}

// RecordOptions configure where discovery records are stored.
type RecordOptions struct {
	Directory string
}

type RecordOption func(*RecordOptions)

// WithDirectory overrides the discovery directory. The default is a
// fixed subdirectory of the OS temp dir shared by all sessions.
func WithDirectory(dir string) RecordOption {
	return func(o *RecordOptions) {
		o.Directory = dir
	}
}

func defaultRecordOptions() RecordOptions {
	return RecordOptions{
		Directory: filepath.Join(os.TempDir(), "vox-core"),
	}
}

// Publish writes the discovery record for identity. An existing record
// for the same identity is overwritten; a previous session on the same
// terminal is by definition gone, its port reused.
func Publish(identity string, port int, opts ...RecordOption) (*Record, error) {
	options := defaultRecordOptions()
	for _, opt := range opts {
		opt(&options)
	}

	if err := os.MkdirAll(options.Directory, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create discovery directory: %w", err)
	}

	path := recordPath(options.Directory, identity)
	if err := os.WriteFile(path, []byte(strconv.Itoa(port)), 0o644); err != nil {
		return nil, fmt.Errorf("failed to publish discovery record: %w", err)
	}

	logger.Debug("published discovery record", "identity", identity, "port", port, "path", path)
	return &Record{Identity: identity, Port: port, path: path}, nil
}

// Remove retracts the record. Removing an already-retracted record is
// not an error.
func (r *Record) Remove() error {
	if r == nil || r.path == "" {
		return nil
	}
	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove discovery record: %w", err)
	}
	logger.Debug("removed discovery record", "identity", r.Identity)
	return nil
}

// Lookup reads a published record for identity. It reports whether a
// record exists; a present record says nothing about liveness, so the
// caller must check the port answers before trusting it.
func Lookup(identity string, opts ...RecordOption) (int, bool) {
	options := defaultRecordOptions()
	for _, opt := range opts {
		opt(&options)
	}

	data, err := os.ReadFile(recordPath(options.Directory, identity))
	if err != nil {
		return 0, false
	}
	port, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || port <= 0 {
		return 0, false
	}
	return port, true
}

// ScanRecords reads every published record in the discovery directory
// and returns their ports. Record files only hold a port, so the
// identities behind them are unknown; the caller decides which, if any,
// belong to a live session.
func ScanRecords(opts ...RecordOption) []int {
	options := defaultRecordOptions()
	for _, opt := range opts {
		opt(&options)
	}

	matches, err := filepath.Glob(filepath.Join(options.Directory, "session-*.port"))
	if err != nil {
		return nil
	}

	ports := make([]int, 0, len(matches))
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		port, err := strconv.Atoi(strings.TrimSpace(string(data)))
		if err != nil || port <= 0 {
			continue
		}
		ports = append(ports, port)
	}
	return ports
}

// recordPath keys the record file by a hash of the identity, since raw
// identities are opaque strings that may contain path separators.
func recordPath(dir, identity string) string {
	h := fnv.New32a()
	h.Write([]byte(identity))
	return filepath.Join(dir, fmt.Sprintf("session-%08x.port", h.Sum32()))
}
