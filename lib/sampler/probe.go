// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sampler

import (
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/net"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/bureau-foundation/transportd/lib/schema/transport"
)

// Probe reads resource usage.
type Probe interface {
	CPU(pid int32) (transport.CPUSample, error)
	Memory(pid int32) (transport.MemorySample, error)
	Network() (transport.NetworkSample, error)
}

// HostProbe reads process and network counters of the local host.
type HostProbe struct{}

func (HostProbe) CPU(pid int32) (transport.CPUSample, error) {
	proc, err := process.NewProcess(pid)
	if err != nil {
		return transport.CPUSample{}, fmt.Errorf("opening process %d: %w", pid, err)
	}
	times, err := proc.Times()
	if err != nil {
		return transport.CPUSample{}, fmt.Errorf("reading cpu times of %d: %w", pid, err)
	}
	percent, err := proc.CPUPercent()
	if err != nil {
		return transport.CPUSample{}, fmt.Errorf("reading cpu percent of %d: %w", pid, err)
	}
	return transport.CPUSample{
		UserNanos:   secondsToNanos(times.User),
		SystemNanos: secondsToNanos(times.System),
		Percent:     percent,
	}, nil
}

func (HostProbe) Memory(pid int32) (transport.MemorySample, error) {
	proc, err := process.NewProcess(pid)
	if err != nil {
		return transport.MemorySample{}, fmt.Errorf("opening process %d: %w", pid, err)
	}
	info, err := proc.MemoryInfo()
	if err != nil {
		return transport.MemorySample{}, fmt.Errorf("reading memory of %d: %w", pid, err)
	}
	return transport.MemorySample{
		ResidentBytes: info.RSS,
		VirtualBytes:  info.VMS,
		SwapBytes:     info.Swap,
	}, nil
}

func (HostProbe) Network() (transport.NetworkSample, error) {
	// pernic=false returns a single aggregate entry.
	counters, err := net.IOCounters(false)
	if err != nil {
		return transport.NetworkSample{}, fmt.Errorf("reading network counters: %w", err)
	}
	if len(counters) == 0 {
		return transport.NetworkSample{}, fmt.Errorf("no network counters reported")
	}
	return transport.NetworkSample{
		BytesSent:     counters[0].BytesSent,
		BytesReceived: counters[0].BytesRecv,
	}, nil
}

func secondsToNanos(seconds float64) int64 {
	return int64(seconds * float64(time.Second))
}
