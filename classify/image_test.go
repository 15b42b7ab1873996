// Copyright 2025 The WasteWise Authors
// SPDX-License-Identifier: Apache-2.0

package classify

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wastewise/wastewise/wastetype"
)

func uniform(c color.Color) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 32, 24))
	for y := range 24 {
		for x := range 32 {
			img.Set(x, y, c)
		}
	}

	return img
}

type fakeImageModel struct {
	scores []float64
	err    error
	panic  bool
	input  Tensor
}

func (m *fakeImageModel) Predict(_ context.Context, input Tensor) ([]float64, error) {
	if m.panic {
		panic("boom")
	}

	m.input = input

	return m.scores, m.err
}

func TestPredictImageColorHeuristic(t *testing.T) {
	tests := []struct {
		name       string
		color      color.Color
		want       wastetype.Type
		confidence float64
		tier       Tier
	}{
		{"green", color.NRGBA{20, 180, 40, 255}, wastetype.Green, 0.5, TierHeuristic},
		{"blue", color.NRGBA{30, 60, 200, 255}, wastetype.Paper, 0.4, TierHeuristic},
		{"red", color.NRGBA{190, 90, 40, 255}, wastetype.Cardboard, 0.4, TierHeuristic},
		{"white", color.NRGBA{240, 240, 240, 255}, wastetype.Foam, 0.4, TierHeuristic},
		{"black", color.NRGBA{10, 10, 10, 255}, wastetype.Metal, 0.4, TierHeuristic},
		{"gray", color.NRGBA{120, 120, 120, 255}, wastetype.Household, 0.3, TierDefault},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PredictImage(context.Background(), uniform(tt.color), nil, nil)
			assert.Equal(t, tt.want, got.Category)
			assert.Equal(t, tt.want.Display(), got.Label)
			assert.InDelta(t, tt.confidence, got.Confidence, 1e-9)
			assert.Equal(t, tt.tier, got.Tier)
		})
	}
}

func TestPredictImageNoInput(t *testing.T) {
	got := PredictImage(context.Background(), nil, &fakeImageModel{}, ImageClassNames())
	assert.True(t, got.NoInput())

	got = PredictImage(context.Background(), image.NewNRGBA(image.Rect(0, 0, 0, 0)), nil, nil)
	assert.True(t, got.NoInput())
}

func TestPredictImageModel(t *testing.T) {
	scores := make([]float64, len(ImageClasses))
	scores[3] = 0.8
	scores[0] = 0.2
	model := &fakeImageModel{scores: scores}

	got := PredictImage(context.Background(), uniform(color.White), model, ImageClassNames())
	assert.Equal(t, wastetype.Glass, got.Category)
	assert.Equal(t, "Glass 🍾", got.Label)
	assert.InDelta(t, 0.8, got.Confidence, 1e-9)
	assert.Equal(t, TierModel, got.Tier)

	assert.Equal(t, InputSize, model.input.Height)
	assert.Equal(t, InputSize, model.input.Width)
	assert.Len(t, model.input.Data, InputSize*InputSize*3)
}

func TestPredictImageLowConfidence(t *testing.T) {
	scores := []float64{0.1, 0.25, 0.2}
	got := PredictImage(context.Background(), uniform(color.White), &fakeImageModel{scores: scores}, ImageClassNames())

	assert.Equal(t, wastetype.Unknown, got.Category)
	assert.Equal(t, wastetype.UnknownLabel, got.Label)
	assert.InDelta(t, 0.25, got.Confidence, 1e-9)
	assert.Equal(t, TierModel, got.Tier)
}

func TestPredictImageFallsBack(t *testing.T) {
	white := uniform(color.White)

	tests := []struct {
		name  string
		model *fakeImageModel
		names []string
	}{
		{"inference error", &fakeImageModel{err: errors.New("unreachable")}, ImageClassNames()},
		{"no scores", &fakeImageModel{}, ImageClassNames()},
		{"index outside names", &fakeImageModel{scores: []float64{0.1, 0.1, 0.9}}, []string{"Paper", "Glass"}},
		{"panic", &fakeImageModel{panic: true}, ImageClassNames()},
		{"logits", &fakeImageModel{scores: []float64{0.1, 4.2}}, ImageClassNames()},
		{"negative score", &fakeImageModel{scores: []float64{-0.5}}, ImageClassNames()},
		{"nan score", &fakeImageModel{scores: []float64{math.NaN()}}, ImageClassNames()},
		{"no class names", &fakeImageModel{scores: []float64{1}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PredictImage(context.Background(), white, tt.model, tt.names)
			assert.Equal(t, wastetype.Foam, got.Category)
			assert.Equal(t, TierHeuristic, got.Tier)
		})
	}
}

func TestImageClassNames(t *testing.T) {
	names := ImageClassNames()
	require.Len(t, names, 12)
	assert.Equal(t, "Household waste 🗑", names[0])
	assert.Equal(t, "Hazardous waste ⚠", names[11])

	for i, n := range names {
		got, ok := wastetype.Parse(n)
		require.True(t, ok, n)
		assert.Equal(t, ImageClasses[i], got)
	}
}

func TestPreprocess(t *testing.T) {
	tensor := Preprocess(uniform(color.NRGBA{255, 0, 51, 255}), 8)

	assert.Equal(t, 8, tensor.Height)
	assert.Equal(t, 8, tensor.Width)
	require.Len(t, tensor.Data, 8*8*3)

	px := tensor.Pixel(7, 7)
	assert.InDelta(t, 1.0, px[0], 1e-6)
	assert.InDelta(t, 0.0, px[1], 1e-6)
	assert.InDelta(t, 0.2, px[2], 1e-6)
}

func TestOrient(t *testing.T) {
	// 3x2 with a marker in the top-left corner
	src := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	marker := color.NRGBA{255, 0, 0, 255}
	src.Set(0, 0, marker)

	tests := []struct {
		orientation int
		w, h        int
		x, y        int
	}{
		{1, 3, 2, 0, 0},
		{2, 3, 2, 2, 0},
		{3, 3, 2, 2, 1},
		{4, 3, 2, 0, 1},
		{5, 2, 3, 0, 0},
		{6, 2, 3, 1, 0},
		{7, 2, 3, 1, 2},
		{8, 2, 3, 0, 2},
	}

	for _, tt := range tests {
		got := orient(src, tt.orientation)
		b := got.Bounds()
		assert.Equal(t, tt.w, b.Dx(), "orientation %d", tt.orientation)
		assert.Equal(t, tt.h, b.Dy(), "orientation %d", tt.orientation)
		assert.Equal(t, marker, color.NRGBAModel.Convert(got.At(tt.x, tt.y)), "orientation %d", tt.orientation)
	}
}

func TestDecodeImage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, uniform(color.NRGBA{0, 200, 0, 255})))

	img, err := DecodeImage(&buf)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 32, 24), img.Bounds())

	_, err = DecodeImage(strings.NewReader("not an image"))
	assert.Error(t, err)
}
