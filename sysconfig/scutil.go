// Copyright 2026 The Proxyenv Authors
// SPDX-License-Identifier: Apache-2.0

package sysconfig

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

// parseScutilProxies parses the dictionary printed by scutil --proxies
// into a Snapshot. The output looks like:
//
//	<dictionary> {
//	  ExceptionsList : <array> {
//	    0 : *.local
//	  }
//	  FTPEnable : 0
//	  HTTPEnable : 1
//	  HTTPPort : 8080
//	  HTTPProxy : proxy.example.com
//	  ProxyAutoConfigEnable : 1
//	  ProxyAutoConfigURLString : http://wpad.example.com/wpad.dat
//	}
//
// Only top-level keys are consulted; nested blocks (ExceptionsList and
// friends) are skipped wholesale. Bypass lists are out of scope for
// this module. Unknown keys are ignored so OS additions never break
// parsing.
func parseScutilProxies(output string) (Snapshot, error) {
	var snapshot Snapshot

	depth := 0
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		opens := strings.Count(line, "{")
		closes := strings.Count(line, "}")

		// Top level is depth 1 (inside the outer <dictionary>).
		// Key lines inside nested blocks are skipped.
		if depth == 1 && !strings.HasSuffix(line, "{") {
			key, value, found := strings.Cut(line, ":")
			if found {
				applyScutilKey(&snapshot, strings.TrimSpace(key), strings.TrimSpace(value))
			}
		}

		depth += opens - closes
		if depth < 0 {
			return Snapshot{}, fmt.Errorf("sysconfig: unbalanced braces in scutil output")
		}
	}
	if err := scanner.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("sysconfig: scanning scutil output: %w", err)
	}
	if depth != 0 {
		return Snapshot{}, fmt.Errorf("sysconfig: truncated scutil output")
	}
	return snapshot, nil
}

func applyScutilKey(snapshot *Snapshot, key, value string) {
	switch key {
	case "HTTPEnable":
		snapshot.HTTPEnable = value == "1"
	case "HTTPProxy":
		snapshot.HTTPProxy = value
	case "HTTPPort":
		snapshot.HTTPPort = parsePort(value)
	case "FTPEnable":
		snapshot.FTPEnable = value == "1"
	case "FTPProxy":
		snapshot.FTPProxy = value
	case "FTPPort":
		snapshot.FTPPort = parsePort(value)
	case "ProxyAutoConfigEnable":
		snapshot.PACEnable = value == "1"
	case "ProxyAutoConfigURLString":
		snapshot.PACURL = value
	}
}

// parsePort converts a port string, clamping malformed or out-of-range
// values to 0 ("no explicit port").
func parsePort(value string) uint16 {
	port, err := strconv.ParseUint(value, 10, 16)
	if err != nil {
		return 0
	}
	return uint16(port)
}
