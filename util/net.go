package util

import (
	"errors"
	"io"
	"net"
	"os"
	"strings"
	"syscall"
)

// IsNetworkClosed checks if the given error tells closing of network connection
func IsNetworkClosed(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Err.Error() == "use of closed network connection"
	}
	return false
}

// IsNetworkTimeout checks if the given error is network timeout
func IsNetworkTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// IsNetworkError checks if the given error comes from the network layer, as opposed to e.g. local validation
func IsNetworkError(err error) bool {
	if IsNetworkClosed(err) || IsNetworkTimeout(err) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	return errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE)
}

// GetFullyQualifiedDomainName returns the FQDN of this host, or an empty string if even the hostname is unavailable
//
// The first name containing a dot from reverse lookups of the host addresses wins, falling back to the plain hostname
func GetFullyQualifiedDomainName() string {
	hostname, err := os.Hostname()
	if err != nil {
		return ""
	}
	if strings.Contains(hostname, ".") {
		return hostname
	}
	if cname, err := net.LookupCNAME(hostname); err == nil {
		if name := strings.TrimSuffix(cname, "."); strings.Contains(name, ".") {
			return name
		}
	}
	addrs, err := net.LookupHost(hostname)
	if err != nil {
		return hostname
	}
	for _, addr := range addrs {
		names, err := net.LookupAddr(addr)
		if err != nil {
			continue
		}
		for _, name := range names {
			if name = strings.TrimSuffix(name, "."); strings.Contains(name, ".") {
				return name
			}
		}
	}
	return hostname
}
