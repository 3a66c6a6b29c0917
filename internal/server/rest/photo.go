package rest

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/dmitrijs2005/bioguard/internal/common"
)

// readPhoto returns the uploaded photo: the multipart file "photo" when
// present, otherwise the base64 text in photoBase64 (a data-URL prefix is
// stripped). An empty result means no photo was sent.
func readPhoto(c echo.Context, photoBase64 string, maxBytes int64) ([]byte, error) {
	if file, err := c.FormFile("photo"); err == nil {
		if maxBytes > 0 && file.Size > maxBytes {
			return nil, echo.NewHTTPError(http.StatusRequestEntityTooLarge, "Photo too large")
		}
		f, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("open upload: %w", err)
		}
		defer f.Close()
		return io.ReadAll(f)
	}

	if photoBase64 == "" {
		return nil, nil
	}

	data, err := decodePhotoBase64(photoBase64)
	if err != nil {
		return nil, err
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, echo.NewHTTPError(http.StatusRequestEntityTooLarge, "Photo too large")
	}
	return data, nil
}

func decodePhotoBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ";base64,"); i >= 0 {
			s = s[i+len(";base64,"):]
		}
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(s)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: photoBase64 is not valid base64", common.ErrorValidation)
	}
	return data, nil
}
