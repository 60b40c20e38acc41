package app

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dshills/macrokit/internal/macro/consolidate"
	"github.com/dshills/macrokit/internal/macro/macrofile"
	"github.com/dshills/macrokit/internal/macro/step"
)

// FileKind identifies a macro file format by extension.
type FileKind int

const (
	// KindUnknown is any other extension.
	KindUnknown FileKind = iota
	// KindMacro is a .amc macro file.
	KindMacro
	// KindLog is a .jsonl raw event log.
	KindLog
	// KindSteps is a .json or .yaml step document.
	KindSteps
)

// KindOf returns the format of path.
func KindOf(path string) FileKind {
	switch strings.ToLower(filepath.Ext(path)) {
	case macrofile.Ext:
		return KindMacro
	case macrofile.LogExt:
		return KindLog
	case ".json", ".yaml", ".yml":
		return KindSteps
	default:
		return KindUnknown
	}
}

// Document is an editable macro timeline loaded from a file.
type Document struct {
	// Path is the file the document was opened from.
	Path string

	// Steps is the timeline.
	Steps *step.List

	// Warnings lists raw events rendered with placeholders while
	// consolidating. Empty for step documents.
	Warnings []*consolidate.EventError

	// Skipped lists macro file items dropped while loading.
	Skipped []string

	// Err is set when consolidation stopped early. Steps then holds the
	// timeline built before the failure.
	Err error

	modified bool
}

// IsModified reports whether the timeline changed since it was opened.
func (d *Document) IsModified() bool {
	return d.modified
}

// SetModified sets the modified flag.
func (d *Document) SetModified(modified bool) {
	d.modified = modified
}

// Open loads the macro at path. Macro files and raw logs are consolidated
// into steps; step documents are loaded as they are. A bare file name not
// found in the working directory is looked up in the user macro directory.
func (app *Application) Open(path string) (*Document, error) {
	path = macrofile.Locate(path)
	doc := &Document{Path: path}

	switch KindOf(path) {
	case KindMacro:
		f, err := macrofile.Load(path, app.logger)
		if err != nil {
			return nil, &OperationError{Op: "open", Target: path, Err: err}
		}
		doc.Skipped = f.Skipped
		res := app.consolidator.Run(macrofile.ToRaw(f.Events))
		macrofile.ResolveGotos(res.Steps, res.StepOf)
		app.setResult(doc, res)

	case KindLog:
		events, err := macrofile.ReadLogFile(path, app.logger)
		if err != nil {
			return nil, &OperationError{Op: "open", Target: path, Err: err}
		}
		app.setResult(doc, app.consolidator.Run(events))

	case KindSteps:
		steps, err := macrofile.LoadSteps(path, app.logger)
		if err != nil {
			return nil, &OperationError{Op: "open", Target: path, Err: err}
		}
		doc.Steps = step.NewList(steps)

	default:
		return nil, &OperationError{Op: "open", Target: path, Err: ErrUnsupportedFile}
	}

	app.logger.Debug("opened %s: %d steps", path, doc.Steps.Len())
	return doc, nil
}

// Consolidate turns raw events into a document that has no file yet.
func (app *Application) Consolidate(events []consolidate.RawEvent) *Document {
	doc := &Document{}
	app.setResult(doc, app.consolidator.Run(events))
	return doc
}

func (app *Application) setResult(doc *Document, res consolidate.Result) {
	doc.Steps = step.NewList(res.Steps)
	doc.Warnings = res.Warnings
	if res.Err != nil {
		doc.Err = &OperationError{Op: "consolidate", Target: doc.Path, Err: res.Err}
	}
}

// Save writes the document to path, or to its own path when path is
// empty. The format follows the extension. Raw logs are capture output
// and cannot be written from steps.
func (app *Application) Save(doc *Document, path string) error {
	if path == "" {
		path = doc.Path
	}

	var err error
	switch KindOf(path) {
	case KindMacro:
		events := macrofile.FromSteps(doc.Steps.Steps(), app.logger)
		if len(events) == 0 && doc.Steps.Len() > 0 {
			err = ErrNothingToSave
			break
		}
		err = macrofile.Save(path, events)
	case KindSteps:
		err = macrofile.SaveSteps(path, doc.Steps.Steps())
	case KindLog:
		err = fmt.Errorf("%w: raw event logs are written by recording", ErrUnsupportedFile)
	default:
		err = ErrUnsupportedFile
	}
	if err != nil {
		return &OperationError{Op: "save", Target: path, Err: err}
	}

	doc.SetModified(false)
	app.logger.Info("saved %d steps to %s", doc.Steps.Len(), path)
	return nil
}
