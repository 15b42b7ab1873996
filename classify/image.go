// Copyright 2025 The WasteWise Authors
// SPDX-License-Identifier: Apache-2.0

package classify

import (
	"bytes"
	"context"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"io"
	"math"

	"github.com/rotisserie/eris"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/wastewise/wastewise/wastetype"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register decoder
)

// InputSize is the side of the square image fed to the image model.
const InputSize = 224

// sampleSize is the side of the thumbnail the color heuristic averages.
const sampleSize = 64

// maxImageBytes bounds uploads read by DecodeImage.
const maxImageBytes = 20 << 20

// ImageClasses is the output order of the trained image model.
var ImageClasses = []wastetype.Type{
	wastetype.Household,
	wastetype.Paper,
	wastetype.Cardboard,
	wastetype.Glass,
	wastetype.Green,
	wastetype.Cans,
	wastetype.Aluminium,
	wastetype.Foam,
	wastetype.Metal,
	wastetype.Textiles,
	wastetype.Oil,
	wastetype.Hazardous,
}

// ImageClassNames returns the display labels of ImageClasses.
func ImageClassNames() []string {
	out := make([]string, len(ImageClasses))
	for i, t := range ImageClasses {
		out[i] = t.Display()
	}

	return out
}

// Tensor is an image as height × width × RGB values in [0,1].
type Tensor struct {
	Height int
	Width  int
	Data   []float32
}

// Pixel returns the RGB values at row y, column x.
func (t Tensor) Pixel(y, x int) []float32 {
	i := (y*t.Width + x) * 3

	return t.Data[i : i+3]
}

// ImageModel runs inference on a preprocessed image and returns one score
// per class.
type ImageModel interface {
	Predict(ctx context.Context, input Tensor) ([]float64, error)
}

// DecodeImage decodes a JPEG, PNG, GIF or WebP image and applies the JPEG
// EXIF orientation, if any.
func DecodeImage(r io.Reader) (image.Image, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxImageBytes+1))
	if err != nil {
		return nil, eris.Wrap(err, "reading image")
	}

	if len(data) > maxImageBytes {
		return nil, eris.Errorf("image larger than %d bytes", maxImageBytes)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, eris.Wrap(err, "decoding image")
	}

	if format == "jpeg" {
		img = orient(img, exifOrientation(data))
	}

	return img, nil
}

func exifOrientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}

	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}

	o, err := tag.Int(0)
	if err != nil {
		return 1
	}

	return o
}

// orient rotates or flips img so that EXIF orientation o displays upright.
func orient(img image.Image, o int) image.Image {
	if o < 2 || o > 8 {
		return img
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	dw, dh := w, h
	if o >= 5 {
		dw, dh = h, w
	}

	dst := image.NewNRGBA(image.Rect(0, 0, dw, dh))

	for y := range h {
		for x := range w {
			var dx, dy int

			switch o {
			case 2:
				dx, dy = w-1-x, y
			case 3:
				dx, dy = w-1-x, h-1-y
			case 4:
				dx, dy = x, h-1-y
			case 5:
				dx, dy = y, x
			case 6:
				dx, dy = h-1-y, x
			case 7:
				dx, dy = h-1-y, w-1-x
			case 8:
				dx, dy = y, w-1-x
			}

			dst.Set(dx, dy, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}

	return dst
}

func resize(img image.Image, size int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)

	return dst
}

// Preprocess resizes img to size × size and scales channels to [0,1].
func Preprocess(img image.Image, size int) Tensor {
	small := resize(img, size)
	t := Tensor{Height: size, Width: size, Data: make([]float32, 0, size*size*3)}

	for y := range size {
		for x := range size {
			c := small.NRGBAAt(x, y)
			t.Data = append(t.Data, float32(c.R)/255, float32(c.G)/255, float32(c.B)/255)
		}
	}

	return t
}

// meanColor averages each channel of a thumbnail of img.
func meanColor(img image.Image) (r, g, b float64) {
	small := resize(img, sampleSize)

	var sr, sg, sb float64

	for y := range sampleSize {
		for x := range sampleSize {
			c := small.NRGBAAt(x, y)
			sr += float64(c.R)
			sg += float64(c.G)
			sb += float64(c.B)
		}
	}

	n := float64(sampleSize * sampleSize)

	return sr / n, sg / n, sb / n
}

// colorTier classifies by the dominant mean channel.
func colorTier(img image.Image) Result {
	r, g, b := meanColor(img)

	switch {
	case g > r && g > b:
		return known(wastetype.Green, 0.5, TierHeuristic)
	case b > r && b > g:
		return known(wastetype.Paper, 0.4, TierHeuristic)
	case r > g && r > b:
		return known(wastetype.Cardboard, 0.4, TierHeuristic)
	case r > 200 && g > 200 && b > 200:
		return known(wastetype.Foam, 0.4, TierHeuristic)
	case r < 50 && g < 50 && b < 50:
		return known(wastetype.Metal, 0.4, TierHeuristic)
	default:
		return defaultResult()
	}
}

// PredictImage classifies a photo. Without a model or class names the
// color heuristic answers; so it does when inference fails or returns an
// index beyond classNames. A nil image yields the TierNone sentinel.
func PredictImage(ctx context.Context, img image.Image, model ImageModel, classNames []string) Result {
	if img == nil || img.Bounds().Empty() {
		return Result{Tier: TierNone}
	}

	a := imageModelTier(ctx, img, model, classNames)

	switch a.Outcome {
	case OutcomeSuccess:
		return a.Result
	case OutcomeUnavailable:
		zap.L().Info("image model not available, using color heuristic")
	case OutcomeFailed:
		zap.L().Error("image model inference failed, using color heuristic", zap.Error(a.Err))
	}

	return colorTier(img)
}

func imageModelTier(ctx context.Context, img image.Image, model ImageModel, classNames []string) (a attempt) {
	if model == nil || len(classNames) == 0 {
		return unavailable()
	}

	defer func() {
		if r := recover(); r != nil {
			a = failed(eris.Errorf("image model panicked: %v", r))
		}
	}()

	scores, err := model.Predict(ctx, Preprocess(img, InputSize))
	if err != nil {
		return failed(eris.Wrap(err, "running image model"))
	}

	if len(scores) == 0 {
		return failed(eris.New("image model returned no scores"))
	}

	idx := argmax(scores)
	if idx >= len(classNames) {
		return failed(eris.Errorf("invalid class index %d, max expected %d", idx, len(classNames)-1))
	}

	if score := scores[idx]; math.IsNaN(score) || score < 0 || score > 1 {
		return failed(eris.Errorf("image model score %v outside [0,1]", score))
	}

	return succeeded(modelResult(classNames[idx], scores[idx]))
}
