//go:build !(linux || darwin || freebsd)

package lyt

import (
	"context"
	"net"
	"strconv"
)

// listen falls back to net.ListenConfig; the backlog is left to the OS.
func listen(ctx context.Context, hostname string, port, _ int) (net.Listener, error) {
	var lc net.ListenConfig
	return lc.Listen(ctx, "tcp", net.JoinHostPort(hostname, strconv.Itoa(port)))
}
