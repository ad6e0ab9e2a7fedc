package encoder

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aarshiv/grader-api/internal/utils"
	"github.com/ledongthuc/pdf"
)

// MaxFileSize is the admission ceiling for a single uploaded file. Anything
// larger is rejected before encoding so oversized request bodies never reach
// the model.
const MaxFileSize = 3 << 20

// Payload is a self-describing inline document: a media type plus the
// base64-encoded bytes, ready to be sent as an inline part. Pages is 1 for
// images and the page count for PDFs.
type Payload struct {
	MediaType string
	Data      string
	Pages     int
	Filename  string
}

// Encode validates and encodes one uploaded file. The returned payload is
// never mutated afterwards.
func Encode(filename, headerContentType string, data []byte) (*Payload, error) {
	if int64(len(data)) > MaxFileSize {
		return nil, utils.NewBadRequestError(
			fmt.Sprintf("\"%s\" exceeds the %dMB limit", filename, MaxFileSize>>20))
	}
	if len(data) == 0 {
		return nil, utils.NewBadRequestError(fmt.Sprintf("\"%s\" is empty", filename))
	}

	mediaType := determineMediaType(filename, headerContentType)
	if !isSupportedMediaType(mediaType) {
		return nil, utils.NewBadRequestError(
			fmt.Sprintf("\"%s\" has unsupported type '%s'. Only JPEG, PNG, WEBP and PDF are allowed", filename, mediaType))
	}

	pages := 1
	if mediaType == "application/pdf" {
		n, err := countPDFPages(data)
		if err != nil {
			return nil, utils.NewBadRequestError(
				fmt.Sprintf("\"%s\" could not be read as a PDF: %v", filename, err))
		}
		pages = n
	}

	return &Payload{
		MediaType: mediaType,
		Data:      base64.StdEncoding.EncodeToString(data),
		Pages:     pages,
		Filename:  filename,
	}, nil
}

// Decode returns the original bytes of the payload.
func (p *Payload) Decode() ([]byte, error) {
	return base64.StdEncoding.DecodeString(p.Data)
}

// determineMediaType resolves the media type from the filename extension with
// fallback to the multipart header value.
func determineMediaType(filename, headerContentType string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".pdf":
		return "application/pdf"
	}
	return headerContentType
}

func isSupportedMediaType(mediaType string) bool {
	switch mediaType {
	case "image/jpeg", "image/png", "image/webp", "application/pdf":
		return true
	}
	return false
}

func countPDFPages(data []byte) (int, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, err
	}
	n := reader.NumPage()
	if n < 1 {
		return 0, fmt.Errorf("document has no pages")
	}
	return n, nil
}
