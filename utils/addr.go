package utils

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// NormalizeListenAddr turns a bare port ("12000") into ":12000" and leaves
// host:port addresses untouched.
func NormalizeListenAddr(addr string) (string, error) {
	if strings.Contains(addr, ":") {
		return addr, nil
	}

	port, err := strconv.Atoi(addr)
	if err != nil {
		return "", fmt.Errorf("invalid port: %v", err)
	}

	return fmt.Sprintf(":%d", port), nil
}

// ClientURL builds the http:// base URL a client uses to reach addr. A
// missing host means localhost.
func ClientURL(addr string) (string, error) {
	addr, err := NormalizeListenAddr(addr)
	if err != nil {
		return "", err
	}

	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}

	return "http://" + addr, nil
}

// IsPortAvailable reports whether host:port can be bound right now.
func IsPortAvailable(host string, port int) bool {
	Verbose("Checking if port %d is available on %s", port, host)
	listener, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		Verbose("error: %v", err)
		return false
	}

	defer listener.Close()
	return true
}
