package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoDerivationPath is returned by a Transformer when it has no way to
// produce the requested frame from the series it was given. GetSeries
// translates it into a FrameNotFoundError; any other transformer error
// propagates unchanged.
var ErrNoDerivationPath = errors.New("no derivation path to requested frame")

// MissingParameterError reports canonical-model keys absent from an
// adapter's input. The missing keys are named so the caller can correct
// the payload; no default is ever substituted.
type MissingParameterError struct {
	Package string
	Keys    []string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("%s: missing required parameter(s): %s", e.Package, strings.Join(e.Keys, ", "))
}

// UnsupportedFrameError reports an observer, origin, coords, rest or
// projection value that the adapter or model cannot serve. Supported lists
// the valid alternatives known in the caller's context.
type UnsupportedFrameError struct {
	Package   string
	Field     string
	Value     string
	Supported []string
}

func (e *UnsupportedFrameError) Error() string {
	return fmt.Sprintf("%s: unsupported %s %q (supported: %s)",
		e.Package, e.Field, e.Value, strings.Join(e.Supported, ", "))
}

// FrameNotFoundError reports that GetSeries found neither an exact nor a
// derivable FrameConfig match. Available enumerates the frames that do
// exist for the observable.
type FrameNotFoundError struct {
	Observable string
	Requested  FrameConfig
	Available  []FrameConfig
}

func (e *FrameNotFoundError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "series %q has no frame matching %s", e.Observable, e.Requested)
	if len(e.Available) == 0 {
		b.WriteString("; no frames populated")
		return b.String()
	}
	b.WriteString("; available frames:")
	for _, fc := range e.Available {
		b.WriteString(" ")
		b.WriteString(fc.String())
	}
	return b.String()
}

// InconsistentEpochsError reports epochs that do not align with the model's
// reference epoch set, or two series combined over different epochs.
type InconsistentEpochsError struct {
	Observable string
	Reason     string
}

func (e *InconsistentEpochsError) Error() string {
	return fmt.Sprintf("series %q: inconsistent epochs: %s", e.Observable, e.Reason)
}
