package database

import (
	"errors"
	"net"
	"net/url"
	"strings"
	"syscall"

	"devevents/internal/domain"
)

const (
	hintSRV         = "SRV DNS lookup failed; use a non-SRV connection string (mongodb://host1,host2/...) or fix network/DNS"
	hintUnreachable = "host unreachable or credentials invalid; check the host, port, network access list and credentials"
)

var srvPatterns = []string{"querysrv", "_mongodb._tcp", "lookup srv", "enotfound", "no such host", "srv record"}

var unreachablePatterns = []string{
	"econnrefused", "connection refused", "server selection error", "server selection timeout",
	"i/o timeout", "no reachable servers", "authentication failed", "network is unreachable",
}

// classifyDialError rewraps DNS/SRV and unreachable-host failures as
// *domain.ConnectivityError with guidance. Anything else is returned as is.
func classifyDialError(uri string, err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	srv := strings.HasPrefix(strings.ToLower(uri), "mongodb+srv://")

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) || containsAny(msg, srvPatterns) {
		if srv {
			return domain.NewConnectivityError(hintSRV, err)
		}
		return domain.NewConnectivityError(hintUnreachable, err)
	}
	if errors.Is(err, syscall.ECONNREFUSED) || containsAny(msg, unreachablePatterns) {
		return domain.NewConnectivityError(hintUnreachable, err)
	}
	return err
}

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

// uriScheme returns the scheme of uri without leaking credentials into logs.
func uriScheme(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme == "" {
		return "unknown"
	}
	return u.Scheme
}

// IsPostgresURI reports whether uri selects the Postgres backend.
func IsPostgresURI(uri string) bool {
	s := uriScheme(uri)
	return s == "postgres" || s == "postgresql"
}
