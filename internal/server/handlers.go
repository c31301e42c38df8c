package server

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lsbmail/lsbmail/pkg/stego"
)

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "Steganography API is running",
		"framing": s.framing.Name(),
	})
}

// hide conceals the "message" field in the uploaded "image" and streams the
// carrier back as a PNG.
func (s *Server) hide(c *gin.Context) {
	if !s.parseForm(c) {
		return
	}
	if _, ok := c.GetPostForm("message"); !ok {
		s.fail(c, http.StatusBadRequest, errors.New("message is required"))
		return
	}
	message := c.PostForm("message")

	framing, channels, ok := s.codecParams(c)
	if !ok {
		return
	}
	grid, filename, ok := s.uploadedGrid(c, channels)
	if !ok {
		return
	}

	carrier, err := stego.Hide(grid, message, stego.WithFraming(framing), stego.WithLogger(s.logger))
	if err != nil {
		s.fail(c, statusFor(err), err)
		return
	}

	var out bytes.Buffer
	if err := stego.EncodeGrid(&out, carrier); err != nil {
		s.fail(c, http.StatusInternalServerError, fmt.Errorf("failed to encode carrier: %w", err))
		return
	}

	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s_stego.png", base))
	c.Header("X-Stego-Framing", framing.Name())
	c.Header("X-Stego-Capacity", strconv.Itoa(grid.Slots()))
	c.Header("X-Stego-Required", strconv.Itoa(framing.RequiredBits(len(message))))
	if res, err := stego.Analyze(grid, carrier); err == nil && !math.IsInf(res.PSNR, 0) {
		c.Header("X-Stego-PSNR", strconv.FormatFloat(res.PSNR, 'f', 2, 64))
	}

	c.Data(http.StatusOK, "image/png", out.Bytes())
}

// reveal returns the text hidden in the uploaded "image".
func (s *Server) reveal(c *gin.Context) {
	if !s.parseForm(c) {
		return
	}
	framing, channels, ok := s.codecParams(c)
	if !ok {
		return
	}
	grid, _, ok := s.uploadedGrid(c, channels)
	if !ok {
		return
	}

	text, err := stego.Reveal(grid, stego.WithFraming(framing), stego.WithLogger(s.logger))
	if err != nil {
		s.fail(c, statusFor(err), err)
		return
	}

	c.JSON(http.StatusOK, RevealResponse{
		Success: true,
		Message: text,
		Framing: framing.Name(),
		Bytes:   len(text),
	})
}

// capacity reports how many message bytes the uploaded "image" can hold
// under each framing.
func (s *Server) capacity(c *gin.Context) {
	if !s.parseForm(c) {
		return
	}
	_, channels, ok := s.codecParams(c)
	if !ok {
		return
	}
	grid, _, ok := s.uploadedGrid(c, channels)
	if !ok {
		return
	}

	slots := grid.Slots()
	resp := CapacityResponse{
		Success:  true,
		Width:    grid.Width,
		Height:   grid.Height,
		Channels: grid.Channels,
		Slots:    slots,
	}
	for _, f := range []stego.Framing{stego.Terminated, stego.LengthPrefixed} {
		resp.Framings = append(resp.Framings, FramingCapacity{Framing: f.Name(), MaxBytes: f.MaxPayload(slots)})
	}
	c.JSON(http.StatusOK, resp)
}

// parseForm parses the multipart body within the configured upload limit.
func (s *Server) parseForm(c *gin.Context) bool {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload)
	if err := c.Request.ParseMultipartForm(s.maxUpload); err != nil {
		status := http.StatusBadRequest
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			status = http.StatusRequestEntityTooLarge
		}
		s.fail(c, status, fmt.Errorf("failed to parse form: %w", err))
		return false
	}
	return true
}

// codecParams reads the optional "framing" and "channels" fields, falling
// back to the server defaults.
func (s *Server) codecParams(c *gin.Context) (stego.Framing, int, bool) {
	framing := s.framing
	if name := c.PostForm("framing"); name != "" {
		f, err := stego.FramingByName(name)
		if err != nil {
			s.fail(c, http.StatusBadRequest, err)
			return nil, 0, false
		}
		framing = f
	}

	channels := s.channels
	if v := c.PostForm("channels"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || (n != stego.RGB && n != stego.RGBA) {
			s.fail(c, http.StatusBadRequest, fmt.Errorf("channels must be 3 or 4, got %q", v))
			return nil, 0, false
		}
		channels = n
	}
	return framing, channels, true
}

func (s *Server) uploadedGrid(c *gin.Context, channels int) (*stego.Grid, string, bool) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			err = errors.New("image file is required")
		}
		s.fail(c, http.StatusBadRequest, err)
		return nil, "", false
	}
	defer file.Close()

	grid, err := stego.DecodeGrid(file, channels)
	if err != nil {
		s.fail(c, statusFor(err), err)
		return nil, "", false
	}
	return grid, header.Filename, true
}

func (s *Server) fail(c *gin.Context, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Success: false, Message: err.Error()})
}

// statusFor maps codec and collaborator errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, stego.ErrEmptyPayload),
		errors.Is(err, stego.ErrInvalidPayload),
		errors.Is(err, stego.ErrDecodeImage),
		errors.Is(err, stego.ErrInvalidGrid):
		return http.StatusBadRequest
	case errors.Is(err, stego.ErrCapacityExceeded),
		errors.Is(err, stego.ErrNoPayloadFound),
		errors.Is(err, stego.ErrMalformedPayload):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
