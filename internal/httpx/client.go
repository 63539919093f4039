package httpx

import (
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

const maxUserAgent = 256

// ClientMeta describes who sent a request, for audit logging only. None of
// it is trusted for authorization.
type ClientMeta struct {
	IP        string
	UserAgent string
}

// ClientFromRequest reads the caller address, preferring the first
// X-Forwarded-For hop over RemoteAddr.
func ClientFromRequest(r *http.Request) ClientMeta {
	ip := ""
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		ip = strings.TrimSpace(strings.SplitN(fwd, ",", 2)[0])
	}
	if ip == "" {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		ip = host
	}

	ua := r.UserAgent()
	if len(ua) > maxUserAgent {
		ua = ua[:maxUserAgent]
	}
	return ClientMeta{IP: ip, UserAgent: ua}
}

func (c ClientMeta) Fields() []zap.Field {
	return []zap.Field{
		zap.String("client_ip", c.IP),
		zap.String("user_agent", c.UserAgent),
	}
}
