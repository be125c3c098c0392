// Copyright 2026 The Proxyenv Authors
// SPDX-License-Identifier: Apache-2.0

package pac

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/dop251/goja"
)

// maxScriptBytes caps the fetched PAC script size. Real-world scripts
// are a few kilobytes; a megabyte is already pathological.
const maxScriptBytes = 1 << 20

// pacPrelude defines the pure-string PAC helper functions in
// JavaScript. Network-touching helpers (dnsResolve, myIpAddress,
// isInNet, isResolvable) are bound from Go where the net package does
// the heavy lifting.
const pacPrelude = `
function isPlainHostName(host) { return host.indexOf('.') === -1; }
function dnsDomainIs(host, domain) {
    return host.length >= domain.length &&
        host.substring(host.length - domain.length) === domain;
}
function localHostOrDomainIs(host, hostdom) {
    return host === hostdom || hostdom.lastIndexOf(host + '.', 0) === 0;
}
function dnsDomainLevels(host) { return host.split('.').length - 1; }
function shExpMatch(str, shexp) {
    var escaped = shexp.replace(/[.+^${}()|[\]\\]/g, '\\$&')
        .replace(/\*/g, '.*').replace(/\?/g, '.');
    return new RegExp('^' + escaped + '$').test(str);
}
function isResolvable(host) { return dnsResolve(host) !== null; }
`

// GojaFacility fetches a PAC script over HTTP and executes
// FindProxyForURL under the goja JavaScript engine. Evaluation runs in
// its own goroutine and reports through the completion callback,
// matching the foreign-callback shape of OS proxy facilities. Context
// cancellation aborts the fetch and interrupts a running script.
type GojaFacility struct {
	client *http.Client
}

// GojaFacilityOptions configures a GojaFacility.
type GojaFacilityOptions struct {
	// Client fetches the PAC script. Defaults to an http.Client with
	// a 15 second timeout and no proxy (fetching the PAC script
	// through a proxy the script is supposed to define would be
	// circular).
	Client *http.Client
}

// NewGojaFacility creates a GojaFacility.
func NewGojaFacility(options GojaFacilityOptions) *GojaFacility {
	client := options.Client
	if client == nil {
		client = &http.Client{
			Timeout:   15 * time.Second,
			Transport: &http.Transport{Proxy: nil},
		}
	}
	return &GojaFacility{client: client}
}

// Evaluate fetches and runs the script, then parses the returned
// result string. The callback receives the candidate list or the
// first error encountered; it is invoked exactly once.
func (f *GojaFacility) Evaluate(ctx context.Context, pacURL, targetURL string, done func([]Candidate, error)) {
	go func() {
		candidates, err := f.evaluate(ctx, pacURL, targetURL)
		done(candidates, err)
	}()
}

func (f *GojaFacility) evaluate(ctx context.Context, pacURL, targetURL string) ([]Candidate, error) {
	script, err := f.fetch(ctx, pacURL)
	if err != nil {
		return nil, err
	}

	target, err := url.Parse(targetURL)
	if err != nil {
		return nil, fmt.Errorf("parsing target URL %q: %w", targetURL, err)
	}

	result, err := runFindProxyForURL(ctx, script, targetURL, target.Hostname())
	if err != nil {
		return nil, err
	}
	if result == "" {
		// A null/undefined return means the script declined to pick
		// a proxy; treat as DIRECT.
		return nil, nil
	}
	return ParseResult(result)
}

func (f *GojaFacility) fetch(ctx context.Context, pacURL string) (string, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, pacURL, nil)
	if err != nil {
		return "", fmt.Errorf("building PAC request: %w", err)
	}
	response, err := f.client.Do(request)
	if err != nil {
		return "", fmt.Errorf("fetching PAC script: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching PAC script: unexpected status %s", response.Status)
	}
	body, err := io.ReadAll(io.LimitReader(response.Body, maxScriptBytes+1))
	if err != nil {
		return "", fmt.Errorf("reading PAC script: %w", err)
	}
	if len(body) > maxScriptBytes {
		return "", fmt.Errorf("PAC script exceeds %d bytes", maxScriptBytes)
	}
	return string(body), nil
}

// runFindProxyForURL executes the script and calls FindProxyForURL.
// Context cancellation interrupts the engine, bounding runaway
// scripts.
func runFindProxyForURL(ctx context.Context, script, targetURL, host string) (string, error) {
	vm := goja.New()

	interruptDone := make(chan struct{})
	defer close(interruptDone)
	go func() {
		select {
		case <-ctx.Done():
			vm.Interrupt("evaluation cancelled")
		case <-interruptDone:
		}
	}()

	bindNetworkHelpers(vm)

	if _, err := vm.RunString(pacPrelude); err != nil {
		return "", fmt.Errorf("installing PAC helpers: %w", err)
	}
	if _, err := vm.RunString(script); err != nil {
		return "", fmt.Errorf("loading PAC script: %w", err)
	}

	find, ok := goja.AssertFunction(vm.Get("FindProxyForURL"))
	if !ok {
		return "", fmt.Errorf("PAC script does not define FindProxyForURL")
	}

	value, err := find(goja.Undefined(), vm.ToValue(targetURL), vm.ToValue(host))
	if err != nil {
		return "", fmt.Errorf("running FindProxyForURL: %w", err)
	}
	if value == nil || goja.IsNull(value) || goja.IsUndefined(value) {
		return "", nil
	}
	return value.String(), nil
}

// bindNetworkHelpers installs the PAC helpers that need real network
// lookups. Returning a plain Go nil maps to JavaScript null.
func bindNetworkHelpers(vm *goja.Runtime) {
	vm.Set("dnsResolve", func(host string) any {
		addresses, err := net.LookupIP(host)
		if err != nil {
			return nil
		}
		for _, address := range addresses {
			if ipv4 := address.To4(); ipv4 != nil {
				return ipv4.String()
			}
		}
		return nil
	})

	vm.Set("myIpAddress", func() string {
		addresses, err := net.InterfaceAddrs()
		if err != nil {
			return "127.0.0.1"
		}
		for _, address := range addresses {
			network, ok := address.(*net.IPNet)
			if !ok || network.IP.IsLoopback() {
				continue
			}
			if ipv4 := network.IP.To4(); ipv4 != nil {
				return ipv4.String()
			}
		}
		return "127.0.0.1"
	})

	vm.Set("isInNet", func(host, pattern, mask string) bool {
		address := net.ParseIP(host)
		if address == nil {
			addresses, err := net.LookupIP(host)
			if err != nil {
				return false
			}
			for _, candidate := range addresses {
				if ipv4 := candidate.To4(); ipv4 != nil {
					address = ipv4
					break
				}
			}
			if address == nil {
				return false
			}
		}
		patternAddress := net.ParseIP(pattern)
		maskAddress := net.IPMask(net.ParseIP(mask).To4())
		if patternAddress == nil || maskAddress == nil {
			return false
		}
		return address.Mask(maskAddress).Equal(patternAddress.Mask(maskAddress))
	})
}
