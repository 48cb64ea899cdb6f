package auth

import (
	"crypto/md5"
	"errors"
	"fmt"
	"net"
	"os"
)

var ErrNoAdapter = errors.New("no hardware address available")

// OfflineUUID derives the deterministic UUID vanilla servers assign
// to offline players: a version 3 UUID over "OfflinePlayer:" plus the
// username.
func OfflineUUID(username string) string {
	sum := md5.Sum([]byte("OfflinePlayer:" + username))
	sum[6] = (sum[6] & 0x0F) | 0x30
	sum[8] = (sum[8] & 0x3F) | 0x80
	return fmt.Sprintf("%x-%x-%x-%x-%x", sum[0:4], sum[4:6], sum[6:8], sum[8:10], sum[10:16])
}

// HardwareID fingerprints the machine for the validate call: the
// first non-loopback MAC address plus the hostname, hashed to a hex
// string.
func HardwareID() (string, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return "", err
	}
	var raw string
	for _, iface := range ifaces {
		if iface.Flags&net.FlagLoopback != 0 || len(iface.HardwareAddr) == 0 {
			continue
		}
		for _, b := range iface.HardwareAddr {
			raw += fmt.Sprintf("%.2X", b)
		}
		break
	}
	if raw == "" {
		return "", ErrNoAdapter
	}
	host, err := os.Hostname()
	if err != nil {
		return "", err
	}
	raw += host
	return fmt.Sprintf("%x", md5.Sum([]byte(raw))), nil
}
