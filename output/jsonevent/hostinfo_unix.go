//go:build unix

package jsonevent

import (
	"os"
	"runtime"

	"golang.org/x/sys/unix"
)

func readHostInfo() HostInfo {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		hostname, _ := os.Hostname()
		return HostInfo{System: runtime.GOOS, Node: hostname, Machine: runtime.GOARCH}
	}
	return HostInfo{
		System:  unix.ByteSliceToString(uts.Sysname[:]),
		Node:    unix.ByteSliceToString(uts.Nodename[:]),
		Release: unix.ByteSliceToString(uts.Release[:]),
		Version: unix.ByteSliceToString(uts.Version[:]),
		Machine: unix.ByteSliceToString(uts.Machine[:]),
	}
}
