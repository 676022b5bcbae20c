package resilience

import (
	"errors"
	"net"
	"strings"
	"syscall"
)

// statusCarrier is implemented by upstream errors that know their HTTP status.
type statusCarrier interface {
	HTTPStatus() int
}

// IsUpstreamFailure reports whether err means the provider itself is
// unhealthy: a network-level failure or a transient HTTP status. Client-side
// problems such as a bad model name or unparseable output return false.
func IsUpstreamFailure(err error) bool {
	if err == nil {
		return false
	}
	var sc statusCarrier
	if errors.As(err, &sc) {
		return IsTransientHTTPStatus(sc.HTTPStatus())
	}
	return IsNetworkError(err)
}

// IsNetworkError reports timeouts, refused or reset connections and DNS
// failures anywhere in err's chain.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, p := range networkPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

var networkPatterns = []string{
	"connection reset by peer",
	"connection refused",
	"broken pipe",
	"temporary failure in name resolution",
	"no such host",
	"tls handshake timeout",
	"i/o timeout",
	"server closed idle connection",
	"transport connection broken",
	"context deadline exceeded",
	"unexpected eof",
}

// IsTransientHTTPStatus reports statuses that indicate provider trouble
// rather than a bad request.
func IsTransientHTTPStatus(statusCode int) bool {
	switch statusCode {
	case 408, 429, 500, 502, 503, 504, 529:
		return true
	default:
		return false
	}
}
