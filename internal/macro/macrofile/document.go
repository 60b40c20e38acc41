package macrofile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dshills/macrokit/internal/logging"
	"github.com/dshills/macrokit/internal/macro/codec"
	"github.com/dshills/macrokit/internal/macro/step"
)

// stepDoc is the stored form of a step in a step document. Besides the
// kind and description it keeps the delay numbers, which the description
// only displays.
type stepDoc struct {
	Seq         int    `json:"seq" yaml:"seq"`
	Kind        string `json:"kind" yaml:"kind"`
	Description string `json:"description" yaml:"description"`
	Comment     string `json:"comment,omitempty" yaml:"comment,omitempty"`

	Min    uint32 `json:"min,omitempty" yaml:"min,omitempty"`
	Max    uint32 `json:"max,omitempty" yaml:"max,omitempty"`
	Random bool   `json:"random,omitempty" yaml:"random,omitempty"`

	Tag     string `json:"tag,omitempty" yaml:"tag,omitempty"`
	Details string `json:"details,omitempty" yaml:"details,omitempty"`
}

type document struct {
	Version int       `json:"version" yaml:"version"`
	Steps   []stepDoc `json:"steps" yaml:"steps"`
}

// DocumentFormat selects the encoding of a step document.
type DocumentFormat int

const (
	DocumentJSON DocumentFormat = iota
	DocumentYAML
)

// FormatFor picks the document format from the path extension.
func FormatFor(path string) (DocumentFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return DocumentJSON, nil
	case ".yaml", ".yml":
		return DocumentYAML, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownDocument, filepath.Ext(path))
	}
}

// MarshalSteps encodes a timeline as a step document.
func MarshalSteps(steps []step.Step, format DocumentFormat) ([]byte, error) {
	doc := document{Version: CurrentVersion, Steps: make([]stepDoc, len(steps))}
	for i, s := range steps {
		d := stepDoc{Seq: s.Seq, Kind: s.Kind.String(), Description: s.Description, Comment: s.Comment}
		switch s.Kind {
		case step.KindDelay:
			d.Min, d.Max, d.Random = s.Delay.Min, s.Delay.Max, s.Delay.Random
		case step.KindOther:
			d.Tag, d.Details = s.Other.Tag, s.Other.Details
		}
		doc.Steps[i] = d
	}

	if format == DocumentYAML {
		return yaml.Marshal(doc)
	}
	return json.MarshalIndent(doc, "", "  ")
}

// UnmarshalSteps decodes a step document. Every step is rebuilt from its
// description, so hand-edited documents get the same validation as user
// input. A step whose fields fail validation fails the whole document; one
// whose description cannot be decoded at all is kept as stored.
func UnmarshalSteps(data []byte, format DocumentFormat, logger *logging.Logger) ([]step.Step, error) {
	logger = logging.OrNull(logger).WithComponent("document")

	var doc document
	var err error
	if format == DocumentYAML {
		err = yaml.Unmarshal(data, &doc)
	} else {
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if doc.Version != 0 && doc.Version != CurrentVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, doc.Version)
	}

	steps := make([]step.Step, 0, len(doc.Steps))
	for i, d := range doc.Steps {
		s, err := fromDoc(d, logger)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		if s.Description != d.Description {
			logger.Debug("step %d description normalized from %q to %q", i+1, d.Description, s.Description)
		}
		steps = append(steps, s)
	}
	step.Renumber(steps)
	return steps, nil
}

// fromDoc rebuilds one step. A description that does not decode for its
// kind is kept verbatim rather than rejected.
func fromDoc(d stepDoc, logger *logging.Logger) (step.Step, error) {
	kind, err := step.ParseKind(d.Kind)
	if err != nil {
		return step.Step{}, err
	}

	base := step.Step{Kind: kind, Description: d.Description, Comment: d.Comment}
	switch kind {
	case step.KindOther:
		s := codec.NewOther(d.Tag, d.Details)
		s.Comment = d.Comment
		return s, nil
	case step.KindDelay:
		// Delays are stored numerically. A zero delay, which offsetting
		// can produce, is kept even though a form could not enter it.
		base.Delay = step.Delay{Min: d.Min, Max: d.Max, Random: d.Random}
		if !base.Valid() {
			return step.Step{}, fmt.Errorf("delay maximum %d is less than minimum %d", d.Max, d.Min)
		}
		return codec.Refresh(base), nil
	}

	f, err := codec.Decode(base)
	if errors.Is(err, codec.ErrDecodeMismatch) {
		logger.Warn("keeping step %d as stored: %v", d.Seq, err)
		return base, nil
	}
	return codec.Build(f)
}

// SaveSteps writes a step document to path, picking JSON or YAML from the
// extension.
func SaveSteps(path string, steps []step.Step) error {
	format, err := FormatFor(path)
	if err != nil {
		return opError("save steps", path, err)
	}
	data, err := MarshalSteps(steps, format)
	if err != nil {
		return opError("save steps", path, err)
	}
	return opError("save steps", path, writeFileAtomic(path, data))
}

// LoadSteps reads a step document from path.
func LoadSteps(path string, logger *logging.Logger) ([]step.Step, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, opError("load steps", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, opError("load steps", path, err)
	}
	steps, err := UnmarshalSteps(data, format, logger)
	if err != nil {
		return nil, opError("load steps", path, err)
	}
	return steps, nil
}
