// Copyright 2026 The Proxyenv Authors
// SPDX-License-Identifier: Apache-2.0

package credstore

// The keychain attribute dump identifies fields by four-character tags
// (some rendered as hex constants), not by name, and provides no typed
// accessor for "the username field". Rather than scanning raw tags at
// every call site, a typed lookup table maps semantic field names to
// the store-specific tags that may carry them; a single accessor walks
// the table and picks the first string/blob-typed value with nonzero
// length. All raw-tag knowledge lives in this file.

// semanticField names a keychain record field independent of how the
// store tags it.
type semanticField int

const (
	// fieldAccount is the stored account (user) name.
	fieldAccount semanticField = iota
	// fieldServer is the host the credential applies to.
	fieldServer
	// fieldLabel is the display label; fallback host carrier for
	// generic passwords, which have no server attribute.
	fieldLabel
)

// fieldTags maps each semantic field to the attribute tags that may
// carry it, in preference order. "acct"/"srvr" are the internet
// password tags; the hex constants are how security(1) renders the
// equivalent generic password attributes; "svce" is the generic
// password service name and "labl"/0x00000007 the item label.
var fieldTags = map[semanticField][]string{
	fieldAccount: {"acct", "0x00000001"},
	fieldServer:  {"srvr", "svce", "0x00000002"},
	fieldLabel:   {"labl", "0x00000007"},
}

// attributeValue is one attribute from a keychain dump: the rendered
// type plus its decoded text.
type attributeValue struct {
	// kind is the dump's type annotation: "blob", "uint32", "sint32",
	// "timedate", or "null".
	kind string
	// text is the decoded value; empty for null attributes.
	text string
}

// record is the full attribute set of one matched keychain item,
// keyed by raw tag.
type record map[string]attributeValue

// stringField returns the value of a semantic field, selecting the
// first string/blob-typed attribute with nonzero length among the
// field's tags. Returns "" when no tag carries a usable value.
func (r record) stringField(field semanticField) string {
	for _, tag := range fieldTags[field] {
		value, ok := r[tag]
		if !ok {
			continue
		}
		if value.kind != "blob" {
			continue
		}
		if len(value.text) > 0 {
			return value.text
		}
	}
	return ""
}
