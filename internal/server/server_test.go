package server

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lsbmail/lsbmail/pkg/stego"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer() *Server {
	return New(Config{
		AllowedOrigins: []string{"http://localhost:3000"},
		MaxUploadMB:    1,
		Framing:        stego.Terminated,
		Channels:       stego.RGB,
	}, zerolog.Nop())
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = uint8(i % 253)
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func multipartRequest(t *testing.T, path string, fields map[string]string, image []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if image != nil {
		fw, err := mw.CreateFormFile("image", "cover.png")
		require.NoError(t, err)
		_, err = fw.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHealth(t *testing.T) {
	s := newTestServer()
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestHideThenReveal(t *testing.T) {
	s := newTestServer()
	message := "Meet at the usual place"

	for _, framing := range []string{"nul", "length"} {
		t.Run(framing, func(t *testing.T) {
			w := httptest.NewRecorder()
			s.Handler().ServeHTTP(w, multipartRequest(t, "/api/v1/stego/hide",
				map[string]string{"message": message, "framing": framing}, pngBytes(t, 20, 20)))

			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
			assert.Equal(t, framing, w.Header().Get("X-Stego-Framing"))
			assert.Equal(t, "1200", w.Header().Get("X-Stego-Capacity"))
			assert.Contains(t, w.Header().Get("Content-Disposition"), "cover_stego.png")
			assert.NotEmpty(t, w.Header().Get("X-Stego-PSNR"))

			carrier := w.Body.Bytes()

			w = httptest.NewRecorder()
			s.Handler().ServeHTTP(w, multipartRequest(t, "/api/v1/stego/reveal",
				map[string]string{"framing": framing}, carrier))
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			var resp RevealResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.True(t, resp.Success)
			assert.Equal(t, message, resp.Message)
			assert.Equal(t, framing, resp.Framing)
		})
	}
}

func TestCapacity(t *testing.T) {
	s := newTestServer()
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, multipartRequest(t, "/api/v1/stego/capacity",
		map[string]string{"channels": "4"}, pngBytes(t, 10, 10)))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp CapacityResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 400, resp.Slots)
	assert.Equal(t, 4, resp.Channels)
	assert.Equal(t, []FramingCapacity{
		{Framing: "nul", MaxBytes: 49},
		{Framing: "length", MaxBytes: 47},
	}, resp.Framings)
}

func TestErrorStatuses(t *testing.T) {
	s := newTestServer()

	tests := []struct {
		name   string
		path   string
		fields map[string]string
		image  []byte
		want   int
	}{
		{"missing message", "/api/v1/stego/hide", map[string]string{}, pngBytes(t, 10, 10), http.StatusBadRequest},
		{"missing image", "/api/v1/stego/hide", map[string]string{"message": "hi"}, nil, http.StatusBadRequest},
		{"empty message", "/api/v1/stego/hide", map[string]string{"message": ""}, pngBytes(t, 10, 10), http.StatusBadRequest},
		{"bad framing", "/api/v1/stego/hide", map[string]string{"message": "hi", "framing": "zip"}, pngBytes(t, 10, 10), http.StatusBadRequest},
		{"bad channels", "/api/v1/stego/reveal", map[string]string{"channels": "2"}, pngBytes(t, 10, 10), http.StatusBadRequest},
		{"not an image", "/api/v1/stego/reveal", map[string]string{}, []byte("plain text"), http.StatusBadRequest},
		{"too long", "/api/v1/stego/hide", map[string]string{"message": string(bytes.Repeat([]byte("A"), 38))}, pngBytes(t, 10, 10), http.StatusUnprocessableEntity},
		{"no payload", "/api/v1/stego/reveal", map[string]string{}, pngBytes(t, 10, 10), http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			s.Handler().ServeHTTP(w, multipartRequest(t, tt.path, tt.fields, tt.image))
			assert.Equal(t, tt.want, w.Code, w.Body.String())

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Message)
		})
	}
}

func TestUploadLimit(t *testing.T) {
	s := newTestServer()
	// 1 MB limit; an uncompressible 2 MB field is rejected.
	big := bytes.Repeat([]byte{0x5a}, 2<<20)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, multipartRequest(t, "/api/v1/stego/hide", map[string]string{"message": string(big)}, pngBytes(t, 4, 4)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/stego/hide", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
