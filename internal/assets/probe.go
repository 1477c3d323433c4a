package assets

import (
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"github.com/h2non/filetype"
	"golang.org/x/image/bmp"
	"golang.org/x/image/webp"
)

// configDecoders reads image headers by MIME type. The generic
// image.DecodeConfig is not used: tga registers itself without a magic
// string and would claim every file.
var configDecoders = map[string]struct {
	format string
	decode func(io.Reader) (image.Config, error)
}{
	"image/png":   {"png", png.DecodeConfig},
	"image/jpeg":  {"jpeg", jpeg.DecodeConfig},
	"image/gif":   {"gif", gif.DecodeConfig},
	"image/bmp":   {"bmp", bmp.DecodeConfig},
	"image/webp":  {"webp", webp.DecodeConfig},
	"image/x-tga": {"tga", tga.DecodeConfig},
}

// TextureInfo describes an image file.
type TextureInfo struct {
	MIME   string
	Format string // decoder name, empty when the image could not be decoded
	Width  int
	Height int
}

// Probe sniffs the type of the image at path and reads its dimensions
// without decoding the pixels.
func Probe(path string) (TextureInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return TextureInfo{}, fmt.Errorf("probing texture: %w", err)
	}
	defer f.Close()

	head := make([]byte, 262)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return TextureInfo{}, fmt.Errorf("probing texture %s: %w", path, err)
	}

	var info TextureInfo
	if kind, _ := filetype.Match(head[:n]); kind != filetype.Unknown {
		info.MIME = kind.MIME.Value
	} else if strings.EqualFold(filepath.Ext(path), ".tga") {
		// TGA has no magic number.
		info.MIME = "image/x-tga"
	}

	dec, ok := configDecoders[info.MIME]
	if !ok {
		return info, nil
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return info, fmt.Errorf("probing texture %s: %w", path, err)
	}
	if cfg, err := dec.decode(f); err == nil {
		info.Format = dec.format
		info.Width = cfg.Width
		info.Height = cfg.Height
	}
	return info, nil
}

// IsImage reports whether the probe recognised an image.
func (t TextureInfo) IsImage() bool {
	return strings.HasPrefix(t.MIME, "image/") || t.Format != ""
}
