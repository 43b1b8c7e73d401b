//go:build !unix

package jsonevent

import (
	"os"
	"runtime"
)

func readHostInfo() HostInfo {
	hostname, _ := os.Hostname()
	return HostInfo{System: runtime.GOOS, Node: hostname, Machine: runtime.GOARCH}
}
