package validation

import (
	"bytes"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("avatar", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })

	return form.File["avatar"][0]
}

func TestValidateFile(t *testing.T) {
	t.Run("png accepted", func(t *testing.T) {
		contentType, err := ValidateFile(fileHeader(t, "me.png", pngHeader), ImageConstraints)
		require.NoError(t, err)
		assert.Equal(t, "image/png", contentType)
	})

	t.Run("extension case ignored", func(t *testing.T) {
		_, err := ValidateFile(fileHeader(t, "ME.PNG", pngHeader), ImageConstraints)
		assert.NoError(t, err)
	})

	t.Run("content sniffed not trusted", func(t *testing.T) {
		_, err := ValidateFile(fileHeader(t, "me.png", []byte("<html><body>hi</body></html>")), ImageConstraints)
		assert.ErrorContains(t, err, "invalid file type")
	})

	t.Run("wrong extension", func(t *testing.T) {
		_, err := ValidateFile(fileHeader(t, "me.gif", pngHeader), ImageConstraints)
		assert.ErrorContains(t, err, "invalid file extension")
	})

	t.Run("empty", func(t *testing.T) {
		_, err := ValidateFile(fileHeader(t, "me.png", nil), ImageConstraints)
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("too large", func(t *testing.T) {
		small := FileConstraints{
			AllowedMimeTypes:  ImageConstraints.AllowedMimeTypes,
			AllowedExtensions: ImageConstraints.AllowedExtensions,
			MaxSize:           4,
		}
		_, err := ValidateFile(fileHeader(t, "me.png", pngHeader), small)
		assert.ErrorContains(t, err, "file too large")
	})
}
