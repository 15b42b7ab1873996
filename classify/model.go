// Copyright 2025 The WasteWise Authors
// SPDX-License-Identifier: Apache-2.0

package classify

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/wastewise/wastewise/utils/textutils"
)

// Artifact file names inside a text model directory.
const (
	VectorizerFile = "vectorizer.json"
	ClassifierFile = "classifier.json"
	EncoderFile    = "encoder.json"
)

// Features is a sparse feature vector indexed by vocabulary position.
type Features map[int]float64

// Vectorizer turns text into features.
type Vectorizer interface {
	Transform(text string) (Features, error)
}

// Classifier predicts a class index from features.
type Classifier interface {
	Predict(x Features) (int, error)
	PredictProba(x Features) ([]float64, error)
}

// LabelEncoder maps class indexes back to labels.
type LabelEncoder interface {
	InverseTransform(class int) (string, error)
}

// TextModel bundles the text pipeline artifacts. It is read-only once built
// and may be shared between goroutines.
type TextModel struct {
	Vectorizer Vectorizer
	Classifier Classifier
	Encoder    LabelEncoder
}

// ready reports whether every artifact is present.
func (m *TextModel) ready() bool {
	return m != nil && m.Vectorizer != nil && m.Classifier != nil && m.Encoder != nil
}

// tokenPattern matches words of two or more letters or digits.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// TfidfVectorizer is a fitted TF-IDF vectorizer over word n-grams.
type TfidfVectorizer struct {
	Vocabulary map[string]int `json:"vocabulary"`
	IDF        []float64      `json:"idf"`
	NgramRange [2]int         `json:"ngram_range"`
	// StripAccents folds accents to ASCII when set to "ascii".
	StripAccents string `json:"strip_accents"`
	SublinearTF  bool   `json:"sublinear_tf"`
	// Norm is "l2" or empty for no normalization.
	Norm string `json:"norm"`
}

func (v *TfidfVectorizer) tokens(text string) []string {
	if v.StripAccents == "ascii" {
		text = textutils.LowerASCIIFolding(text)
	} else {
		text = strings.ToLower(text)
	}

	words := tokenPattern.FindAllString(text, -1)

	lo, hi := v.NgramRange[0], v.NgramRange[1]
	if lo <= 0 {
		lo = 1
	}

	if hi < lo {
		hi = lo
	}

	var out []string

	for n := lo; n <= hi; n++ {
		for i := 0; i+n <= len(words); i++ {
			out = append(out, strings.Join(words[i:i+n], " "))
		}
	}

	return out
}

// Transform implements Vectorizer.
func (v *TfidfVectorizer) Transform(text string) (Features, error) {
	counts := make(Features)

	for _, tok := range v.tokens(text) {
		j, ok := v.Vocabulary[tok]
		if !ok {
			continue
		}

		if j < 0 || j >= len(v.IDF) {
			return nil, eris.Errorf("vocabulary entry %q points outside idf (%d)", tok, j)
		}

		counts[j]++
	}

	var norm float64

	for j, tf := range counts {
		if v.SublinearTF {
			tf = 1 + math.Log(tf)
		}

		w := tf * v.IDF[j]
		counts[j] = w
		norm += w * w
	}

	if v.Norm == "l2" && norm > 0 {
		norm = math.Sqrt(norm)
		for j := range counts {
			counts[j] /= norm
		}
	}

	return counts, nil
}

// LinearClassifier is a fitted multinomial logistic regression.
type LinearClassifier struct {
	Coef      [][]float64 `json:"coef"`
	Intercept []float64   `json:"intercept"`
}

func (c *LinearClassifier) scores(x Features) ([]float64, error) {
	if len(c.Coef) == 0 || len(c.Coef) != len(c.Intercept) {
		return nil, eris.Errorf("classifier has %d coefficient rows and %d intercepts", len(c.Coef), len(c.Intercept))
	}

	out := make([]float64, len(c.Coef))

	for k, row := range c.Coef {
		s := c.Intercept[k]

		for j, v := range x {
			if j < 0 || j >= len(row) {
				return nil, eris.Errorf("feature %d outside coefficient row of %d", j, len(row))
			}

			s += row[j] * v
		}

		out[k] = s
	}

	return out, nil
}

// PredictProba implements Classifier. A single coefficient row is a binary
// model whose row scores the second class.
func (c *LinearClassifier) PredictProba(x Features) ([]float64, error) {
	s, err := c.scores(x)
	if err != nil {
		return nil, err
	}

	if len(s) == 1 {
		p := 1 / (1 + math.Exp(-s[0]))

		return []float64{1 - p, p}, nil
	}

	maxScore := math.Inf(-1)
	for _, v := range s {
		maxScore = math.Max(maxScore, v)
	}

	var sum float64

	for k, v := range s {
		s[k] = math.Exp(v - maxScore)
		sum += s[k]
	}

	for k := range s {
		s[k] /= sum
	}

	return s, nil
}

// Predict implements Classifier.
func (c *LinearClassifier) Predict(x Features) (int, error) {
	p, err := c.PredictProba(x)
	if err != nil {
		return 0, err
	}

	return argmax(p), nil
}

// Encoder is a fitted label encoder.
type Encoder struct {
	Classes []string `json:"classes"`
}

// InverseTransform implements LabelEncoder.
func (e *Encoder) InverseTransform(class int) (string, error) {
	if class < 0 || class >= len(e.Classes) {
		return "", eris.Errorf("class %d outside the %d known labels", class, len(e.Classes))
	}

	return e.Classes[class], nil
}

func argmax(v []float64) int {
	best := 0
	for i := range v {
		if v[i] > v[best] {
			best = i
		}
	}

	return best
}

func readArtifact(dir, name string, v any) error {
	data, err := os.ReadFile(filepath.Join(dir, name)) // #nosec G304 - model directory is configured by the operator
	if err != nil {
		return eris.Wrapf(err, "reading %s", name)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return eris.Wrapf(err, "parsing %s", name)
	}

	return nil
}

// LoadTextModel loads the three text artifacts from dir and checks that
// their shapes agree.
func LoadTextModel(dir string) (*TextModel, error) {
	var (
		vec TfidfVectorizer
		clf LinearClassifier
		enc Encoder
	)

	if err := readArtifact(dir, VectorizerFile, &vec); err != nil {
		return nil, err
	}

	if err := readArtifact(dir, ClassifierFile, &clf); err != nil {
		return nil, err
	}

	if err := readArtifact(dir, EncoderFile, &enc); err != nil {
		return nil, err
	}

	rows := len(clf.Coef)
	if rows == 1 {
		rows = 2
	}

	if rows != len(enc.Classes) {
		return nil, eris.Errorf("classifier predicts %d classes but the encoder knows %d", rows, len(enc.Classes))
	}

	for k, row := range clf.Coef {
		if len(row) != len(vec.IDF) {
			return nil, eris.Errorf("coefficient row %d has %d features, vectorizer has %d", k, len(row), len(vec.IDF))
		}
	}

	return &TextModel{Vectorizer: &vec, Classifier: &clf, Encoder: &enc}, nil
}
