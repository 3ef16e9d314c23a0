// package resources defines the error taxonomy shared by the descriptor,
// cache, and realization layers.
package resources

import "fmt"

// AssetResolutionError indicates that an external asset referenced by a
// descriptor could not be located or parsed (missing file, malformed image,
// broken model reference). It carries the offending path or reference.
type AssetResolutionError struct {
	// Ref is the path or reference that failed to resolve.
	Ref string

	// Err is the underlying cause.
	Err error
}

func (e *AssetResolutionError) Error() string {
	return fmt.Sprintf("failed to resolve asset %q: %v", e.Ref, e.Err)
}

func (e *AssetResolutionError) Unwrap() error {
	return e.Err
}

// RealizationError indicates that turning a descriptor into its GPU-side
// resource failed (device rejection, allocation failure, pipeline
// compilation error).
type RealizationError struct {
	// Kind names the resource kind being realized (e.g. "material", "mesh").
	Kind string

	// Label identifies the descriptor, when it carries one.
	Label string

	// Err is the underlying cause.
	Err error
}

func (e *RealizationError) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("failed to realize %s %q: %v", e.Kind, e.Label, e.Err)
	}
	return fmt.Sprintf("failed to realize %s: %v", e.Kind, e.Err)
}

func (e *RealizationError) Unwrap() error {
	return e.Err
}
