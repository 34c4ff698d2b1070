// Package xmlutils provides the XML helpers used by the OFX extractor for
// XML-flavored (OFX 2.x) files.
package xmlutils

import (
	"fmt"
	"io"

	"gopkg.in/xmlpath.v2"
)

// XPath expressions for the OFX 2.x transaction list.
const (
	XPathStatementTransaction = "//STMTTRN"
	XPathPostedDate           = "//STMTTRN/DTPOSTED"
	XPathAmount               = "//STMTTRN/TRNAMT"
	XPathMemo                 = "//STMTTRN/MEMO"
)

// LoadXML parses XML content from a reader and returns the root node.
func LoadXML(r io.Reader) (*xmlpath.Node, error) {
	root, err := xmlpath.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse XML content: %w", err)
	}
	return root, nil
}

// ExtractFromXML extracts all values matching an XPath expression, in
// document order.
func ExtractFromXML(root *xmlpath.Node, xpath string) ([]string, error) {
	path, err := xmlpath.Compile(xpath)
	if err != nil {
		return nil, fmt.Errorf("failed to compile XPath: %w", err)
	}

	var values []string
	iter := path.Iter(root)
	for iter.Next() {
		values = append(values, iter.Node().String())
	}

	return values, nil
}

// GetOrEmpty returns slice[index] or "" when the index is out of bounds.
// Parallel XPath extractions can come back with different lengths when a
// block omits an optional tag.
func GetOrEmpty(slice []string, index int) string {
	if index < len(slice) {
		return slice[index]
	}
	return ""
}
