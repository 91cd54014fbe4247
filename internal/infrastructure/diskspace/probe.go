// Package diskspace reports free space on the filesystem holding a path.
package diskspace

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v3/disk"
)

// Probe implements port.DiskSpaceProbe with gopsutil.
type Probe struct{}

// New creates a new Probe.
func New() *Probe {
	return &Probe{}
}

// FreeBytes returns the bytes available to unprivileged users at path.
func (*Probe) FreeBytes(ctx context.Context, path string) (uint64, error) {
	usage, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("failed to check disk space: %w", err)
	}
	return usage.Free, nil
}
