// =============================================================================
// OBX Importer - OBX Parser Module
// =============================================================================
//
// This module is responsible for reading OBX exports from the furniture
// planning tool into an in-memory XML tree. It handles:
//   - UTF-8 and the Latin-1 family of encodings the exporter declares
//   - Byte order marks and leading whitespace before the XML declaration
//   - Documents without the expected cutBuffer root
//
// The transformation engine never reads files itself; it works on the
// *etree.Document returned here.
//
// =============================================================================

package obxparser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/text/encoding/charmap"
)

// RootElement is the tag of every OBX document root.
const RootElement = "cutBuffer"

var (
	// ErrEmptyDocument is returned when the input contains no root element.
	ErrEmptyDocument = errors.New("document has no root element")

	// ErrInvalidDocument is returned when the root element is not cutBuffer.
	ErrInvalidDocument = errors.New("not an OBX document")
)

// =============================================================================
// OBX DATA STRUCTURE
// =============================================================================

// OBXData is a parsed OBX file.
type OBXData struct {
	// Document is the parsed XML tree.
	Document *etree.Document

	// SourceFile is the path the document was read from.
	SourceFile string

	// RoomName is the file name without extension. In multi-room mode it
	// labels the room banner and subtotal lines.
	RoomName string
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// ParseFile reads and parses an OBX file.
//
// PARAMETERS:
//   - filePath: The path to the OBX file.
//
// RETURNS:
//   - The parsed document with its room name.
//   - An error if the file cannot be read or is not an OBX document.
func ParseFile(filePath string) (*OBXData, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	defer file.Close()

	doc, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(filePath), err)
	}

	return &OBXData{
		Document:   doc,
		SourceFile: filePath,
		RoomName:   RoomName(filePath),
	}, nil
}

// Parse reads an OBX document from r.
func Parse(r io.Reader) (*etree.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return ParseBytes(data)
}

// ParseBytes parses an in-memory OBX document.
func ParseBytes(data []byte) (*etree.Document, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	data = bytes.TrimLeft(data, " \t\r\n")
	if len(data) == 0 {
		return nil, ErrEmptyDocument
	}

	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = charsetReader

	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("invalid XML: %w", err)
	}

	root := doc.Root()
	if root == nil {
		return nil, ErrEmptyDocument
	}
	if root.Tag != RootElement {
		return nil, fmt.Errorf("%w: root element is %q", ErrInvalidDocument, root.Tag)
	}

	return doc, nil
}

// RoomName derives a room label from a file path.
func RoomName(filePath string) string {
	base := filepath.Base(filePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// charsetReader decodes the non-UTF-8 encodings seen in OBX exports.
//
// CUSTOMIZATION: Add further charmap entries if an exporter declares them.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "utf-8", "utf8", "":
		return input, nil
	case "iso-8859-1", "iso8859-1", "latin1", "latin-1":
		return charmap.ISO8859_1.NewDecoder().Reader(input), nil
	case "iso-8859-15", "iso8859-15", "latin9":
		return charmap.ISO8859_15.NewDecoder().Reader(input), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder().Reader(input), nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", label)
	}
}
