package infrastructure

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"

	"github.com/yourusername/vid2pdf-go/internal/domain"
)

// DefaultJPEGQuality is used when no quality is configured
const DefaultJPEGQuality = 90

// PDFAssembler writes ordered images into a PDF, one page per image with
// the page sized to the image in points.
type PDFAssembler struct {
	quality int
	logger  *zap.Logger
}

// NewPDFAssembler creates a new PDF assembler
func NewPDFAssembler(quality int, logger *zap.Logger) *PDFAssembler {
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PDFAssembler{quality: quality, logger: logger}
}

// Assemble writes images to outputPath in the given order
func (a *PDFAssembler) Assemble(images []string, outputPath string) error {
	if len(images) == 0 {
		return domain.ErrNoImages
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{UnitStr: "pt", Size: fpdf.SizeType{Wd: 595, Ht: 842}})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)

	for i, path := range images {
		page, bounds, err := a.flatten(path)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", domain.ErrAssemblyFailed, filepath.Base(path), err)
		}

		w, h := float64(bounds.Dx()), float64(bounds.Dy())
		name := "page" + strconv.Itoa(i)
		opts := fpdf.ImageOptions{ImageType: "JPG"}

		pdf.AddPageFormat("P", fpdf.SizeType{Wd: w, Ht: h})
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(page))
		pdf.ImageOptions(name, 0, 0, w, h, false, opts, 0, "")
		if err := pdf.Error(); err != nil {
			return fmt.Errorf("%w: %s: %v", domain.ErrAssemblyFailed, filepath.Base(path), err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrAssemblyFailed, err)
	}
	if err := pdf.OutputFileAndClose(outputPath); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrAssemblyFailed, err)
	}

	a.logger.Info("Document assembled",
		zap.String("path", outputPath),
		zap.Int("pages", len(images)))
	return nil
}

// flatten decodes an image, composites it onto opaque white and re-encodes
// it as JPEG so every page shares one colour model.
func (a *PDFAssembler) flatten(path string) ([]byte, image.Rectangle, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, image.Rectangle{}, err
	}
	defer file.Close()

	src, _, err := image.Decode(file)
	if err != nil {
		return nil, image.Rectangle{}, err
	}

	bounds := src.Bounds()
	rgb := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgb, rgb.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(rgb, rgb.Bounds(), src, bounds.Min, draw.Over)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, rgb, &jpeg.Options{Quality: a.quality}); err != nil {
		return nil, image.Rectangle{}, err
	}
	return buf.Bytes(), rgb.Bounds(), nil
}
