// Copyright 2025 The WasteWise Authors
// SPDX-License-Identifier: Apache-2.0

package classify

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/wastewise/wastewise/wastetype"
	"go.uber.org/zap"
)

// PredictText classifies a free text description. model may be nil, in
// which case the keyword heuristic answers. An empty description yields the
// TierNone sentinel with zero confidence.
func PredictText(description string, model *TextModel) Result {
	if strings.TrimSpace(description) == "" {
		return Result{Tier: TierNone}
	}

	a := textModelTier(description, model)

	switch a.Outcome {
	case OutcomeSuccess:
		return a.Result
	case OutcomeUnavailable:
		zap.L().Info("text model not available, using keyword heuristic")
	case OutcomeFailed:
		zap.L().Error("text model inference failed, using keyword heuristic", zap.Error(a.Err))
	}

	return keywordTier(description)
}

func textModelTier(description string, model *TextModel) (a attempt) {
	if !model.ready() {
		return unavailable()
	}

	defer func() {
		if r := recover(); r != nil {
			a = failed(eris.Errorf("text model panicked: %v", r))
		}
	}()

	x, err := model.Vectorizer.Transform(strings.ToLower(description))
	if err != nil {
		return failed(eris.Wrap(err, "vectorizing description"))
	}

	class, err := model.Classifier.Predict(x)
	if err != nil {
		return failed(eris.Wrap(err, "predicting class"))
	}

	proba, err := model.Classifier.PredictProba(x)
	if err != nil {
		return failed(eris.Wrap(err, "predicting probabilities"))
	}

	if class < 0 || class >= len(proba) {
		return failed(eris.Errorf("predicted class %d outside %d probabilities", class, len(proba)))
	}

	label, err := model.Encoder.InverseTransform(class)
	if err != nil {
		return failed(eris.Wrap(err, "decoding class label"))
	}

	return succeeded(modelResult(label, proba[class]))
}

// modelResult maps a raw model label and its confidence to a Result.
func modelResult(label string, confidence float64) Result {
	if confidence < ConfidenceThreshold {
		return Result{Category: wastetype.Unknown, Label: wastetype.UnknownLabel, Confidence: confidence, Tier: TierModel}
	}

	if t, ok := wastetype.Parse(label); ok {
		return known(t, confidence, TierModel)
	}

	return Result{Category: wastetype.Unknown, Label: label, Confidence: confidence, Tier: TierModel}
}
