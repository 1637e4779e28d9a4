//go:build linux || darwin || freebsd

package lyt

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"

	"golang.org/x/sys/unix"
)

// listen binds a TCP listener with an explicit accept backlog, which
// net.Listen does not expose.
func listen(ctx context.Context, hostname string, port, backlog int) (net.Listener, error) {
	if backlog <= 0 {
		backlog = DefaultBacklog
	}

	addr, err := resolveTCP(ctx, hostname, port)
	if err != nil {
		return nil, err
	}

	family, sa := sockaddr(addr)
	fd, err := unix.Socket(family, unix.SOCK_STREAM, unix.IPPROTO_TCP)
	if err != nil {
		return nil, os.NewSyscallError("socket", err)
	}
	unix.CloseOnExec(fd)

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return nil, os.NewSyscallError("setsockopt", err)
	}
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("bind %s: %w", addr, os.NewSyscallError("bind", err))
	}
	if err := unix.Listen(fd, backlog); err != nil {
		unix.Close(fd)
		return nil, os.NewSyscallError("listen", err)
	}

	// FileListener dups the descriptor; the file is closed either way.
	f := os.NewFile(uintptr(fd), "lyt-listener")
	defer f.Close()
	return net.FileListener(f)
}

func resolveTCP(ctx context.Context, hostname string, port int) (*net.TCPAddr, error) {
	if hostname == "" {
		return &net.TCPAddr{IP: net.IPv4zero, Port: port}, nil
	}
	if ip := net.ParseIP(hostname); ip != nil {
		return &net.TCPAddr{IP: ip, Port: port}, nil
	}

	ips, err := net.DefaultResolver.LookupIP(ctx, "ip", hostname)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", net.JoinHostPort(hostname, strconv.Itoa(port)), err)
	}
	// prefer IPv4, as net.Listen does for "tcp"
	for _, ip := range ips {
		if ip.To4() != nil {
			return &net.TCPAddr{IP: ip, Port: port}, nil
		}
	}
	return &net.TCPAddr{IP: ips[0], Port: port}, nil
}

func sockaddr(addr *net.TCPAddr) (int, unix.Sockaddr) {
	if ip4 := addr.IP.To4(); ip4 != nil {
		sa := &unix.SockaddrInet4{Port: addr.Port}
		copy(sa.Addr[:], ip4)
		return unix.AF_INET, sa
	}
	sa := &unix.SockaddrInet6{Port: addr.Port}
	copy(sa.Addr[:], addr.IP.To16())
	if addr.Zone != "" {
		if ifi, err := net.InterfaceByName(addr.Zone); err == nil {
			sa.ZoneId = uint32(ifi.Index)
		}
	}
	return unix.AF_INET6, sa
}
