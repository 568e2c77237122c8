// Package net holds the LAN plumbing shared by the hosts: picking the
// address to put in a share link, mDNS announcement, and websocket peers.
package net

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"
)

// GetOutgoingIP finds the preferred local IP address for the host to share.
func GetOutgoingIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		// no route out; pick an interface instead
		return firstIPv4().String()
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String()
}

// firstIPv4 returns the first IPv4 address of an interface that is up and
// not loopback, or 127.0.0.1.
func firstIPv4() net.IP {
	ifaces, _ := net.Interfaces()
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, _ := iface.Addrs()
		for _, a := range addrs {
			if ipnet, ok := a.(*net.IPNet); ok && ipnet.IP.To4() != nil {
				return ipnet.IP.To4()
			}
		}
	}
	slog.Warn("no LAN address found, share link will use loopback")
	return net.IPv4(127, 0, 0, 1)
}

// ShareLink builds the URL a second browser opens to join session id.
// An empty id links to the landing page.
func ShareLink(host string, port int, id string) string {
	u := url.URL{Scheme: "http", Host: net.JoinHostPort(host, strconv.Itoa(port)), Path: "/"}
	if id != "" {
		u.RawQuery = url.Values{"session": {id}}.Encode()
	}
	return u.String()
}

// ListenPort extracts the port from a listen address such as ":8888".
func ListenPort(addr string) (int, error) {
	_, p, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, fmt.Errorf("listen address %q: %w", addr, err)
	}
	port, err := strconv.Atoi(p)
	if err != nil {
		return 0, fmt.Errorf("listen port %q: %w", p, err)
	}
	return port, nil
}
