package http

import (
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/quantumauth-io/private-expense-log/internal/shared"
)

func isLoopbackRequest(r *http.Request) bool {
	ra := r.RemoteAddr

	h, _, err := net.SplitHostPort(ra)
	if err != nil {
		ip := net.ParseIP(ra)
		return ip != nil && ip.IsLoopback()
	}
	ip := net.ParseIP(h)
	return ip != nil && ip.IsLoopback()
}

func isSafeLocalHost(hostport string) bool {
	host := hostport
	if h, _, err := net.SplitHostPort(hostport); err == nil {
		host = h
	}
	host = strings.ToLower(host)
	return host == "127.0.0.1" || host == "localhost" || host == "::1"
}

func normalizeOrigin(in string) string {
	in = strings.TrimSpace(in)
	if in == "" {
		return ""
	}
	u, err := url.Parse(in)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host)
}

func uniqueOrigins(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, o := range in {
		o = normalizeOrigin(o)
		if o == "" {
			continue
		}
		if _, ok := seen[o]; ok {
			continue
		}
		seen[o] = struct{}{}
		out = append(out, o)
	}
	return out
}

// statusFor maps an error kind onto an HTTP status.
func statusFor(err error) int {
	switch shared.KindOf(err) {
	case shared.KindValidation, shared.KindInvalidDate:
		return http.StatusBadRequest
	case shared.KindUnauthorized, shared.KindUserRejected:
		return http.StatusForbidden
	case shared.KindEntryExists:
		return http.StatusConflict
	case shared.KindNotReady, shared.KindAborted:
		return http.StatusServiceUnavailable
	case shared.KindUnsupported:
		return http.StatusNotImplemented
	case shared.KindReverted:
		return http.StatusUnprocessableEntity
	case shared.KindNetwork, shared.KindChainIDUnavailable, shared.KindSDKUnavailable, shared.KindSDKShape:
		return http.StatusBadGateway
	case shared.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error, msg string) {
	c.JSON(statusFor(err), gin.H{
		JSONKeyError: msg,
		JSONKeyKind:  shared.KindOf(err).String(),
	})
}

// dateParam parses a YYYYMMDD path parameter.
func dateParam(c *gin.Context, name string) (uint32, bool) {
	d, err := shared.ParseDate(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{JSONKeyError: HTTPErrorInvalidDateText})
		return 0, false
	}
	return d, true
}

// dateRange reads ?start and ?end, either of which may be omitted.
func dateRange(c *gin.Context) (uint32, uint32, bool) {
	start, end := defaultRangeStart, defaultRangeEnd
	for _, q := range []struct {
		key string
		dst *uint32
	}{{"start", &start}, {"end", &end}} {
		raw := strings.TrimSpace(c.Query(q.key))
		if raw == "" {
			continue
		}
		d, err := shared.ParseDate(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{JSONKeyError: HTTPErrorInvalidDateText})
			return 0, 0, false
		}
		*q.dst = d
	}
	if start > end {
		c.JSON(http.StatusBadRequest, gin.H{JSONKeyError: HTTPErrorInvalidRangeText})
		return 0, 0, false
	}
	return start, end, true
}
