package wizard

import (
	"strings"

	"dataforge/internal/store"
)

// CanAdvance is the pure step guard. It reports whether the form snapshot
// satisfies the requirements of the given step. Steps without a gate
// default to true.
func CanAdvance(step Step, snap Snapshot) bool {
	switch step {
	case StepSource:
		return strings.TrimSpace(snap.SourceID) != ""
	case StepType:
		return snap.ExtractionType != ""
	case StepConfiguration:
		return strings.TrimSpace(snap.Name) != ""
	case StepTemplates:
		// Exactly one check applies, selected by extraction type.
		switch snap.ExtractionType {
		case store.ExtractionPredefined:
			return strings.TrimSpace(snap.TemplateName) != ""
		case store.ExtractionDependent:
			return strings.TrimSpace(snap.DependentTemplate) != ""
		case store.ExtractionCustom:
			return strings.TrimSpace(snap.CustomQuery) != ""
		}
		return false
	default:
		return true
	}
}

// ValidateTransformation checks the transformation rule consistency:
// a skipped transformation always passes; otherwise at least one field must
// be selected and every derived column needs a non-empty trimmed name and
// expression. Validation short-circuits at the first failing column, so
// callers needing full-form feedback must re-run after each fix.
func ValidateTransformation(skip bool, fields []store.TransformationField, derived []store.DerivedColumn) error {
	if skip {
		return nil
	}

	selected := false
	for _, f := range fields {
		if f.Selected {
			selected = true
			break
		}
	}
	if !selected {
		return store.ErrNoFieldsSelected
	}

	for i, col := range derived {
		if strings.TrimSpace(col.Name) == "" {
			return &store.InvalidDerivedColumnError{Index: i, Field: "name"}
		}
		if strings.TrimSpace(col.Expression) == "" {
			return &store.InvalidDerivedColumnError{Index: i, Field: "expression"}
		}
	}
	return nil
}
