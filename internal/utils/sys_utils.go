/*
SPDX-License-Identifier: GPL-3.0-or-later

Copyright (C) 2025 EvtShip Contributors

This file is part of EvtShip.

EvtShip is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

EvtShip is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with EvtShip. If not, see https://www.gnu.org/licenses/.
*/

// evtship/agent/internal/utils/sys_utils.go
// Package agentutils provides small helpers shared across the agent:
// host identity, tag parsing, and string utilities.

package agentutils

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"os"
	"strings"
)

// GetHostname returns the system hostname, or "unknown" if it can't be determined.
func GetHostname() string {
	h, err := os.Hostname()
	if err != nil || h == "" {
		return "unknown"
	}
	return h
}

// GetLocalIP returns the primary outbound IPv4 address of this host.
// It opens a UDP socket toward a public address without sending any
// traffic, then inspects the chosen local endpoint. Returns an empty
// string when no route exists.
func GetLocalIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return ""
	}
	defer conn.Close()

	if addr, ok := conn.LocalAddr().(*net.UDPAddr); ok {
		return addr.IP.String()
	}
	return ""
}

// GenerateEndpointID derives a stable endpoint identifier from a
// hostname. The same host always maps to the same id.
func GenerateEndpointID(hostname string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(hostname))))
	return "host-" + hex.EncodeToString(sum[:8])
}

// MergeMaps copies b over a into a new map. Keys in b win. Either
// argument may be nil.
func MergeMaps(a, b map[string]string) map[string]string {
	out := make(map[string]string, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}
	for k, v := range b {
		out[k] = v
	}
	return out
}

// ParseTagString parses a "k=v,k2=v2" string into a map. Malformed
// pairs are skipped. Keys are lowercased, values kept as-is.
func ParseTagString(s string) map[string]string {
	tags := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		k = strings.ToLower(strings.TrimSpace(k))
		v = strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		tags[k] = v
	}
	return tags
}

// TruncateString caps s at max bytes. Zero or negative max disables
// truncation.
func TruncateString(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max]
}
