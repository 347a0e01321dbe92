// Package imageenc turns user-selected image files into data-URIs for display
// and base64 payloads for the remote chat service.
package imageenc

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/papercomputeco/visorx/pkg/llm"
)

// DefaultMaxBytes bounds the size of an encoded image.
const DefaultMaxBytes int64 = 20 << 20

// ErrUnreadable is wrapped by every error returned for a file that cannot be
// read or is not an image.
var ErrUnreadable = errors.New("image could not be read")

// File is an image selected by the user.
type File interface {
	// Name is a display name (file name or URL).
	Name() string

	// MIMEType is the declared content type, or empty when unknown.
	MIMEType() string

	// Open returns a reader over the file content.
	Open(ctx context.Context) (io.ReadCloser, error)
}

// Attachment is an encoded image.
type Attachment struct {
	// DataURI is usable directly as an image source for display.
	DataURI string

	// Payload is the DataURI with its "data:<mime>;base64," prefix stripped.
	Payload llm.ImagePayload
}

// Encoder reads and encodes image files.
type Encoder struct {
	maxBytes int64
}

// NewEncoder creates an Encoder. A non-positive maxBytes selects DefaultMaxBytes.
func NewEncoder(maxBytes int64) *Encoder {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Encoder{maxBytes: maxBytes}
}

// Encode reads f and returns its data-URI and transmission payload.
func (e *Encoder) Encode(ctx context.Context, f File) (*Attachment, error) {
	rc, err := f.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrUnreadable, f.Name(), err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, e.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrUnreadable, f.Name(), err)
	}
	if int64(len(data)) > e.maxBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrUnreadable, f.Name(), e.maxBytes)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrUnreadable, f.Name())
	}

	mime := mimeType(f.MIMEType(), data)
	if !strings.HasPrefix(mime, "image/") {
		return nil, fmt.Errorf("%w: %s has content type %q", ErrUnreadable, f.Name(), mime)
	}

	uri := "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
	_, payload, err := SplitDataURI(uri)
	if err != nil {
		return nil, err
	}

	return &Attachment{
		DataURI: uri,
		Payload: llm.ImagePayload{MIMEType: mime, Data: payload},
	}, nil
}

var imageType = regexp.MustCompile(`^image/[a-z0-9.+-]+$`)

// mimeType prefers a well-formed declared image type and otherwise sniffs
// the content.
func mimeType(declared string, data []byte) string {
	declared = strings.TrimSpace(strings.ToLower(declared))
	if i := strings.IndexByte(declared, ';'); i >= 0 {
		declared = strings.TrimSpace(declared[:i])
	}
	if imageType.MatchString(declared) {
		return declared
	}
	sniffed := http.DetectContentType(data)
	if i := strings.IndexByte(sniffed, ';'); i >= 0 {
		sniffed = sniffed[:i]
	}
	return sniffed
}

// SplitDataURI returns the MIME type and base64 payload of a base64 data-URI.
func SplitDataURI(uri string) (mime, payload string, err error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", "", fmt.Errorf("%w: not a data URI", ErrUnreadable)
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", "", fmt.Errorf("%w: data URI has no payload", ErrUnreadable)
	}
	mime, ok = strings.CutSuffix(header, ";base64")
	if !ok {
		return "", "", fmt.Errorf("%w: data URI is not base64", ErrUnreadable)
	}
	return mime, payload, nil
}

// FromBytes wraps in-memory image content.
func FromBytes(name, mime string, data []byte) File {
	return bytesFile{name: name, mime: mime, data: data}
}

type bytesFile struct {
	name string
	mime string
	data []byte
}

func (b bytesFile) Name() string     { return b.name }
func (b bytesFile) MIMEType() string { return b.mime }

func (b bytesFile) Open(context.Context) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b.data)), nil
}
