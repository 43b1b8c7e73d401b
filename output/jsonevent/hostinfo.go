package jsonevent

import (
	"sync"
)

// HostInfo is the platform fingerprint of the local machine
type HostInfo struct {
	System  string
	Node    string
	Release string
	Version string
	Machine string
}

var (
	localHostInfo     HostInfo
	localHostInfoOnce sync.Once
)

// LocalHostInfo returns the platform fingerprint, computed once per process
func LocalHostInfo() HostInfo {
	localHostInfoOnce.Do(func() {
		localHostInfo = readHostInfo()
	})
	return localHostInfo
}
