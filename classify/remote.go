// Copyright 2025 The WasteWise Authors
// SPDX-License-Identifier: Apache-2.0

package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// ServingModel is an ImageModel served over the TensorFlow Serving REST
// predict API.
type ServingModel struct {
	baseURL string
	name    string
	client  *http.Client
}

// NewServingModel creates a client for model name served at baseURL.
func NewServingModel(baseURL, name string, client *http.Client) *ServingModel {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	return &ServingModel{
		baseURL: strings.TrimRight(baseURL, "/"),
		name:    name,
		client:  client,
	}
}

type predictRequest struct {
	Instances [][][][]float32 `json:"instances"`
}

type predictResponse struct {
	Predictions [][]float64 `json:"predictions"`
	Error       string      `json:"error"`
}

// Predict implements ImageModel.
func (m *ServingModel) Predict(ctx context.Context, input Tensor) ([]float64, error) {
	if len(input.Data) != input.Height*input.Width*3 {
		return nil, eris.Errorf("tensor holds %d values, want %d", len(input.Data), input.Height*input.Width*3)
	}

	rows := make([][][]float32, input.Height)
	for y := range rows {
		rows[y] = make([][]float32, input.Width)
		for x := range rows[y] {
			rows[y][x] = input.Pixel(y, x)
		}
	}

	body, err := json.Marshal(predictRequest{Instances: [][][][]float32{rows}})
	if err != nil {
		return nil, eris.Wrap(err, "encoding predict request")
	}

	reqURL := fmt.Sprintf("%s/v1/models/%s:predict", m.baseURL, url.PathEscape(m.name))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "building predict request")
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "calling model server")
	}
	defer resp.Body.Close() //nolint:errcheck

	var out predictResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return nil, eris.Wrapf(err, "decoding predict response (status %d)", resp.StatusCode)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("model server returned status %d: %s", resp.StatusCode, out.Error)
	}

	if len(out.Predictions) == 0 {
		return nil, eris.New("model server returned no predictions")
	}

	return out.Predictions[0], nil
}

// Ping checks that the model is loaded and available.
func (m *ServingModel) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/v1/models/%s", m.baseURL, url.PathEscape(m.name)), nil)
	if err != nil {
		return eris.Wrap(err, "building status request")
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return eris.Wrap(err, "calling model server")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("model server returned status %d", resp.StatusCode)
	}

	return nil
}
