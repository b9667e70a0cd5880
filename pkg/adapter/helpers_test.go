package adapter_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// mp4 header with an isom ftyp box, enough for content sniffing
var mp4Header = []byte{
	0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p',
	'i', 's', 'o', 'm', 0x00, 0x00, 0x02, 0x00,
	'i', 's', 'o', 'm', 'i', 's', 'o', '2',
}

func writePNG(t *testing.T, dir, name string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, buf.Bytes(), 0600))
	return p
}

func writeMP4(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, mp4Header, 0600))
	return p
}
