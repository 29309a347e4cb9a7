package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pdfBytes  = []byte("%PDF-1.4\n%âãÏÓ\n1 0 obj\n<< /Type /Catalog >>\nendobj\n")
	pngBytes  = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}
	jpegBytes = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}
	stepBytes = []byte("ISO-10303-21;\nHEADER;\nFILE_DESCRIPTION(('bracket'),'2;1');\n")
	dxfBytes  = []byte("0\nSECTION\n2\nHEADER\n9\n$ACADVER\n")
	gifBytes  = []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00")
)

func TestSniffAttachmentAccepted(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     []byte
		want     string
	}{
		{"pdf", "drawing.pdf", pdfBytes, "application/pdf"},
		{"png", "part.png", pngBytes, "image/png"},
		{"jpeg", "photo.JPG", jpegBytes, "image/jpeg"},
		{"step", "bracket.step", stepBytes, "model/step"},
		{"step alt extension", "bracket.stp", stepBytes, "model/step"},
		{"dxf", "profile.dxf", dxfBytes, "image/vnd.dxf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SniffAttachment(tt.filename, tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSniffAttachmentRejectsMismatchedExtension(t *testing.T) {
	// The content is a PDF no matter what the filename claims.
	_, err := SniffAttachment("drawing.dxf", pdfBytes)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match")

	_, err = SniffAttachment("innocent.png", jpegBytes)
	assert.Error(t, err)
}

func TestSniffAttachmentRejectsDisallowedTypes(t *testing.T) {
	_, err := SniffAttachment("anim.gif", gifBytes)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not allowed")

	_, err = SniffAttachment("script.pdf", []byte("#!/bin/sh\nrm -rf /\n"))
	assert.Error(t, err)
}

func TestSniffAttachmentRejectsEmptyAndOversize(t *testing.T) {
	_, err := SniffAttachment("empty.pdf", nil)
	assert.Error(t, err)

	big := make([]byte, MaxAttachmentBytes+1)
	copy(big, pdfBytes)
	_, err = SniffAttachment("big.pdf", big)
	assert.Error(t, err)
}

func TestSniffAttachmentRejectsCorruptWebP(t *testing.T) {
	// Sniffs as webp but the VP8 payload is garbage.
	fake := append([]byte("RIFF\x24\x00\x00\x00WEBP"), []byte("VP8 garbage")...)
	_, err := SniffAttachment("cover.webp", fake)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "webp")
}
