package utils

import (
	"net"
	"net/http"
	"time"
)

// webhookClient is the shared HTTP client for ops-log webhook posts. The
// request timeout keeps a slow webhook from stalling scheduler workers.
var webhookClient = &http.Client{
	Transport: &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
	},
	Timeout: 15 * time.Second,
}
