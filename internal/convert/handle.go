package convert

import (
	"fmt"
	"sort"

	"github.com/banshee-data/microlens/internal/model"
)

// PackageHandle is a read-only view of one adapter dump: the native
// parameter mapping plus the FrameConfig it was produced under. Handles
// are created by the Converter and cached for its lifetime.
type PackageHandle struct {
	pkg    string
	frame  model.FrameConfig
	params map[string]any
}

func newHandle(pkg string, frame model.FrameConfig, params map[string]any) *PackageHandle {
	copied := make(map[string]any, len(params))
	for k, v := range params {
		copied[k] = v
	}
	return &PackageHandle{pkg: pkg, frame: frame, params: copied}
}

// Package names the package the handle was dumped for.
func (h *PackageHandle) Package() string { return h.pkg }

// Frame returns the FrameConfig the payload was produced under.
func (h *PackageHandle) Frame() model.FrameConfig { return h.frame }

// Field returns a native field by name.
func (h *PackageHandle) Field(name string) (any, bool) {
	v, ok := h.params[name]
	return v, ok
}

// Float returns a numeric native field by name.
func (h *PackageHandle) Float(name string) (float64, error) {
	v, ok := h.params[name]
	if !ok {
		return 0, fmt.Errorf("handle for %q has no field %q (fields: %v)", h.pkg, name, h.fieldNames())
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("field %q of %q handle is %T, not a float", name, h.pkg, v)
	}
	return f, nil
}

// Params returns a copy of the native parameter mapping.
func (h *PackageHandle) Params() map[string]any {
	out := make(map[string]any, len(h.params))
	for k, v := range h.params {
		out[k] = v
	}
	return out
}

func (h *PackageHandle) fieldNames() []string {
	names := make([]string, 0, len(h.params))
	for k := range h.params {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
