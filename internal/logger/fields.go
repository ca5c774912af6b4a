package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldComponent is the structured log field key for the emitting component.
	FieldComponent = "component"
	// FieldAsset is the structured log field key for a trained asset name.
	FieldAsset = "asset"
	// FieldPath is the structured log field key for a file path.
	FieldPath = "path"
	// FieldModelKind is the structured log field key for the classifier backend.
	FieldModelKind = "model_kind"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields safely attaches the provided fields to the logger.
// A nil logger is replaced by a no-op logger.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// AssetFields describes a trained asset by name and storage path.
func AssetFields(asset, path string) []zap.Field {
	return StringFields(
		StringField{Key: FieldAsset, Value: asset},
		StringField{Key: FieldPath, Value: path},
	)
}

// WithComponent names the component emitting log entries.
func WithComponent(logger *zap.Logger, component string) *zap.Logger {
	return WithFields(logger, StringFields(StringField{Key: FieldComponent, Value: component})...)
}
