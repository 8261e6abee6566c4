package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"os"
	"path/filepath"
	"strings"

	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/config"
	"github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/models"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	DefaultTradeImageDir   = "/tmp/ecomtrade/trade-images"
	DefaultTradeImageMaxMB = 5
	TradeImageMediaPrefix  = "/media/trade"
	TradeImageMaxSide      = 1440
	JPEGQuality            = 82
	WebPQuality            = 70
	// Decoded pixel limits, checked before the image is decoded.
	TradeImageMaxPixels     = 40_000_000
	TradeImageMaxSourceSide = 12000
)

// TradeImageService turns base64 data URIs in trade posts into files served
// from TradeImageMediaPrefix. Remote http(s) URLs pass through untouched.
type TradeImageService struct {
	dir      string
	maxBytes int64
}

// NewTradeImageService reads the image directory and size limit from cfg.
func NewTradeImageService(cfg *config.Config) *TradeImageService {
	dir := DefaultTradeImageDir
	maxMB := DefaultTradeImageMaxMB
	if cfg != nil {
		if cfg.TradeImageDir != "" {
			dir = cfg.TradeImageDir
		}
		if cfg.TradeImageMaxMB > 0 {
			maxMB = cfg.TradeImageMaxMB
		}
	}
	return &TradeImageService{dir: dir, maxBytes: int64(maxMB) << 20}
}

// Dir is where normalized images are written.
func (s *TradeImageService) Dir() string {
	return s.dir
}

// Normalize returns images with every data URI replaced by the URL of its
// stored WebP rendition.
func (s *TradeImageService) Normalize(ctx context.Context, userID uint, images []string) ([]string, error) {
	out := make([]string, 0, len(images))
	for i, raw := range images {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raw = strings.TrimSpace(raw)
		switch {
		case isRemoteImageURL(raw):
			out = append(out, raw)
		case strings.HasPrefix(raw, "data:image/"):
			url, err := s.storeDataURI(userID, raw)
			if err != nil {
				return nil, err
			}
			out = append(out, url)
		default:
			return nil, models.NewValidationError(fmt.Sprintf("Image %d must be an http(s) URL or a base64 image data URI", i+1))
		}
	}
	return out, nil
}

func (s *TradeImageService) storeDataURI(userID uint, uri string) (string, error) {
	header, payload, ok := strings.Cut(uri, ",")
	if !ok || !strings.HasSuffix(header, ";base64") {
		return "", models.NewValidationError("Image data URI must be base64 encoded")
	}
	if int64(base64.StdEncoding.DecodedLen(len(payload))) > s.maxBytes+2 {
		return "", models.NewValidationError(fmt.Sprintf("Image exceeds %d MB", s.maxBytes>>20))
	}
	content, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", models.NewValidationError("Image data is not valid base64")
	}
	if int64(len(content)) > s.maxBytes {
		return "", models.NewValidationError(fmt.Sprintf("Image exceeds %d MB", s.maxBytes>>20))
	}

	meta, format, err := image.DecodeConfig(bytes.NewReader(content))
	if err != nil || !isSupportedDecodedFormat(format) {
		return "", models.NewValidationError("Unsupported image format")
	}
	if err := checkImageDimensions(meta.Width, meta.Height); err != nil {
		return "", err
	}

	img, format, err := image.Decode(bytes.NewReader(content))
	if err != nil || !isSupportedDecodedFormat(format) {
		return "", models.NewValidationError("Unsupported image format")
	}

	hash := imageHash(userID, content)
	webpPath := filepath.Join(s.dir, hash+".webp")
	url := TradeImageMediaPrefix + "/" + hash + ".webp"
	if _, err := os.Stat(webpPath); err == nil {
		return url, nil
	}

	resized := resizeToFit(img, TradeImageMaxSide, TradeImageMaxSide)
	webpBytes, err := encodeWebP(resized, WebPQuality)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	jpgBytes, err := encodeJPEG(resized, JPEGQuality)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	if err := writeBytesToFile(filepath.Join(s.dir, hash+".jpg"), jpgBytes); err != nil {
		return "", models.NewInternalError(err)
	}
	if err := writeBytesToFile(webpPath, webpBytes); err != nil {
		return "", models.NewInternalError(err)
	}
	return url, nil
}

func checkImageDimensions(w, h int) error {
	if w <= 0 || h <= 0 {
		return models.NewValidationError("Image has no pixels")
	}
	if w > TradeImageMaxSourceSide || h > TradeImageMaxSourceSide ||
		int64(w)*int64(h) > TradeImageMaxPixels {
		return models.NewValidationError(fmt.Sprintf("Image dimensions %dx%d are too large", w, h))
	}
	return nil
}

func isRemoteImageURL(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "http://")
}

func isSupportedDecodedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg", "png", "gif", "webp":
		return true
	default:
		return false
	}
}

// imageHash keys stored files by uploader and content so re-posting the same
// image reuses the existing file.
func imageHash(userID uint, content []byte) string {
	h := sha256.New()
	_, _ = fmt.Fprintf(h, "%d:", userID)
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 || (w <= maxWidth && h <= maxHeight) {
		return src
	}

	scale := min(float64(maxWidth)/float64(w), float64(maxHeight)/float64(h))
	newW := max(int(float64(w)*scale), 1)
	newH := max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeBytesToFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
