package central

import (
	"os"
	"strings"

	"github.com/pcdshub/pcdslog/defs"
	"github.com/pcdshub/pcdslog/util"
)

// AllowedDomains returns the domain suffixes from PCDS_LOG_DOMAINS, or the defaults if unset
func AllowedDomains() []string {
	if domains, ok := os.LookupEnv(defs.EnvLogDomains); ok {
		return strings.Fields(domains)
	}
	return strings.Fields(defs.DefaultAllowedDomains)
}

// Enabled tells whether centralized logging should be enabled on this host, i.e. whether its fully qualified
// domain name ends with one of the given suffixes
//
// It's up to callers to check this before installing a handler
func Enabled(domains []string) bool {
	return EnabledFor(util.GetFullyQualifiedDomainName(), domains)
}

// EnabledFor checks the given FQDN against domain suffixes
func EnabledFor(fqdn string, domains []string) bool {
	for _, domain := range domains {
		if domain != "" && strings.HasSuffix(fqdn, domain) {
			return true
		}
	}
	return false
}
