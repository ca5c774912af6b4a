package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

const (
	KindLogistic = "logistic"
	KindStandard = "standard"
)

type envelope struct {
	Kind string `json:"kind"`
}

// LoadClassifier reads a classifier artifact and builds the backend named by
// its kind.
func LoadClassifier(path string) (Classifier, error) {
	payload, kind, err := readArtifact(path)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindLogistic:
		var m Logistic
		if err := json.Unmarshal(payload, &m); err != nil {
			return nil, fmt.Errorf("decode %s classifier: %w", kind, err)
		}
		if len(m.Numeric) == 0 && len(m.Categorical) == 0 {
			return nil, errors.New("classifier has no weights")
		}
		return &m, nil
	default:
		return nil, fmt.Errorf("unsupported classifier kind %q", kind)
	}
}

// LoadScaler reads a scaler artifact and builds the backend named by its kind.
func LoadScaler(path string) (Scaler, error) {
	payload, kind, err := readArtifact(path)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindStandard:
		var s Standard
		if err := json.Unmarshal(payload, &s); err != nil {
			return nil, fmt.Errorf("decode %s scaler: %w", kind, err)
		}
		if err := s.check(); err != nil {
			return nil, err
		}
		return &s, nil
	default:
		return nil, fmt.Errorf("unsupported scaler kind %q", kind)
	}
}

// ClassifierKind names the backend of c as written in its artifact.
func ClassifierKind(c Classifier) string {
	switch c.(type) {
	case *Logistic:
		return KindLogistic
	default:
		return fmt.Sprintf("%T", c)
	}
}

func (l *Logistic) Save(path string) error {
	return writeArtifact(path, struct {
		Kind string `json:"kind"`
		*Logistic
	}{Kind: KindLogistic, Logistic: l})
}

func (s *Standard) Save(path string) error {
	return writeArtifact(path, struct {
		Kind string `json:"kind"`
		*Standard
	}{Kind: KindStandard, Standard: s})
}

func readArtifact(path string) ([]byte, string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, "", errors.New("artifact path is not configured")
	}

	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}

	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, "", fmt.Errorf("decode artifact envelope: %w", err)
	}

	kind := strings.ToLower(strings.TrimSpace(env.Kind))
	if kind == "" {
		return nil, "", errors.New("artifact kind is not set")
	}

	return payload, kind, nil
}

func writeArtifact(path string, artifact any) error {
	payload, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}
