package encoder

import (
	"bytes"
	"strings"
	"testing"
)

func TestEncodeRoundTrip(t *testing.T) {
	original := []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x01, 0x02}

	payload, err := Encode("scan.png", "", original)
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}

	if payload.MediaType != "image/png" {
		t.Errorf("MediaType = %q, want image/png", payload.MediaType)
	}
	if payload.Pages != 1 {
		t.Errorf("Pages = %d, want 1", payload.Pages)
	}

	decoded, err := payload.Decode()
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if !bytes.Equal(decoded, original) {
		t.Errorf("round trip mismatch: got %v, want %v", decoded, original)
	}
}

func TestEncodeSizeCeiling(t *testing.T) {
	atLimit := make([]byte, MaxFileSize)

	if _, err := Encode("exact.jpg", "", atLimit); err != nil {
		t.Errorf("file of exactly %d bytes should be accepted, got: %v", MaxFileSize, err)
	}

	overLimit := make([]byte, MaxFileSize+1)
	_, err := Encode("huge.jpg", "", overLimit)
	if err == nil {
		t.Fatal("file one byte over the ceiling should be rejected")
	}
	if !strings.Contains(err.Error(), "huge.jpg") {
		t.Errorf("rejection should name the file, got: %v", err)
	}
	if !strings.Contains(err.Error(), "3MB") {
		t.Errorf("rejection should name the ceiling, got: %v", err)
	}
}

func TestEncodeEmptyFile(t *testing.T) {
	if _, err := Encode("blank.png", "", nil); err == nil {
		t.Error("empty file should be rejected")
	}
}

func TestEncodeUnsupportedType(t *testing.T) {
	_, err := Encode("notes.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", []byte("x"))
	if err == nil {
		t.Fatal("unsupported type should be rejected")
	}
	if !strings.Contains(err.Error(), "notes.docx") {
		t.Errorf("rejection should name the file, got: %v", err)
	}
}

func TestDetermineMediaType(t *testing.T) {
	tests := []struct {
		filename string
		header   string
		want     string
	}{
		{"page.JPG", "", "image/jpeg"},
		{"page.jpeg", "application/octet-stream", "image/jpeg"},
		{"page.png", "", "image/png"},
		{"page.webp", "", "image/webp"},
		{"paper.pdf", "", "application/pdf"},
		{"upload", "image/png", "image/png"},
	}

	for _, tt := range tests {
		if got := determineMediaType(tt.filename, tt.header); got != tt.want {
			t.Errorf("determineMediaType(%q, %q) = %q, want %q", tt.filename, tt.header, got, tt.want)
		}
	}
}

func TestEncodeCorruptPDF(t *testing.T) {
	_, err := Encode("broken.pdf", "", []byte("this is not a pdf"))
	if err == nil {
		t.Fatal("corrupt PDF should be rejected")
	}
	if !strings.Contains(err.Error(), "broken.pdf") {
		t.Errorf("rejection should name the file, got: %v", err)
	}
}
