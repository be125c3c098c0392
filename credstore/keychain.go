// Copyright 2026 The Proxyenv Authors
// SPDX-License-Identifier: Apache-2.0

package credstore

import (
	"bufio"
	"fmt"
	"strings"
)

// parseSecurityDump parses the output of security(1)
// find-internet-password / find-generic-password with -g: a header,
// an attribute block, and (on the stderr half) the password line.
//
//	keychain: "/Users/alice/Library/Keychains/login.keychain-db"
//	class: "inet"
//	attributes:
//	    0x00000007 <blob>="proxy.example.com"
//	    "acct"<blob>="alice"
//	    "atyp"<blob>="dflt"
//	    "port"<uint32>=0x00001f90
//	    "ptcl"<uint32>="http"
//	    "srvr"<blob>="proxy.example.com"
//	password: "s3cret"
//
// Returns the attribute record and the plaintext password (empty when
// the dump carries none). The caller moves the password into a secret
// buffer immediately.
func parseSecurityDump(output string) (record, string, error) {
	attributes := make(record)
	password := ""
	inAttributes := false

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(trimmed, "password:"):
			password = parsePasswordLine(trimmed)
			inAttributes = false
		case trimmed == "attributes:":
			inAttributes = true
		case inAttributes && strings.HasPrefix(line, " "):
			tag, value, ok := parseAttributeLine(trimmed)
			if ok {
				attributes[tag] = value
			}
		default:
			inAttributes = false
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, "", fmt.Errorf("scanning security output: %w", err)
	}
	if len(attributes) == 0 {
		return nil, "", fmt.Errorf("security output carried no attributes")
	}
	return attributes, password, nil
}

// parseAttributeLine decodes one attribute line of the form
//
//	"acct"<blob>="alice"
//	0x00000007 <blob>="proxy.example.com"
//	"port"<uint32>=0x00001f90
//	"icmt"<blob>=<NULL>
//
// Returns ok=false for lines outside that shape.
func parseAttributeLine(line string) (string, attributeValue, bool) {
	openIndex := strings.Index(line, "<")
	closeIndex := strings.Index(line, ">")
	if openIndex < 0 || closeIndex < openIndex {
		return "", attributeValue{}, false
	}

	tag := strings.TrimSpace(line[:openIndex])
	tag = strings.Trim(tag, `"`)
	if tag == "" {
		return "", attributeValue{}, false
	}

	kind := line[openIndex+1 : closeIndex]
	rest := line[closeIndex+1:]
	if !strings.HasPrefix(rest, "=") {
		return "", attributeValue{}, false
	}
	raw := strings.TrimSpace(rest[1:])

	value := attributeValue{kind: kind}
	switch {
	case raw == "<NULL>":
		value.kind = "null"
	case strings.HasPrefix(raw, `"`):
		value.text = strings.Trim(raw, `"`)
	default:
		value.text = raw
	}
	return tag, value, true
}

// parsePasswordLine extracts the password from a `password: "..."`
// line. A bare `password:` (no value) yields "". Hex-rendered
// passwords (`password: 0x... "..."`) use the trailing quoted form.
func parsePasswordLine(line string) string {
	rest := strings.TrimSpace(strings.TrimPrefix(line, "password:"))
	if rest == "" {
		return ""
	}
	// Hex form carries the decoded text in trailing quotes.
	if strings.HasPrefix(rest, "0x") {
		firstQuote := strings.Index(rest, `"`)
		if firstQuote < 0 {
			return ""
		}
		rest = rest[firstQuote:]
	}
	return strings.Trim(rest, `"`)
}
