package fonts

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Names of the bundled Go fonts.
const (
	GoRegular = "Go-Regular"
	GoBold    = "Go-Bold"
)

var (
	goRegularFace = sync.OnceValues(func() (*TrueTypeFace, error) { return LoadTrueType(GoRegular, goregular.TTF) })
	goBoldFace    = sync.OnceValues(func() (*TrueTypeFace, error) { return LoadTrueType(GoBold, gobold.TTF) })
)

// Registry maps font names used in style configuration to faces. It is safe
// for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	faces map[string]Face
}

// NewRegistry returns a registry holding the Helvetica family and the
// bundled Go fonts.
func NewRegistry() *Registry {
	r := &Registry{faces: make(map[string]Face)}
	for _, name := range []string{Helvetica, HelveticaBold, HelveticaOblique, HelveticaBoldOblique} {
		f, _ := NewStandardFace(name)
		r.faces[name] = f
	}
	if f, err := goRegularFace(); err == nil {
		r.faces[GoRegular] = f
	}
	if f, err := goBoldFace(); err == nil {
		r.faces[GoBold] = f
	}
	return r
}

// Register binds name to face, replacing any previous binding.
func (r *Registry) Register(name string, face Face) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.faces[name] = face
}

// RegisterTrueType parses data and registers it under name.
func (r *Registry) RegisterTrueType(name string, data []byte) error {
	face, err := LoadTrueType(name, data)
	if err != nil {
		return fmt.Errorf("register %s: %w", name, err)
	}
	r.Register(name, face)
	return nil
}

// RegisterTrueTypeFile reads a font file and registers it under name.
func (r *Registry) RegisterTrueTypeFile(name, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("register %s: %w", name, err)
	}
	return r.RegisterTrueType(name, data)
}

// Lookup returns the face registered under name.
func (r *Registry) Lookup(name string) (Face, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.faces[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFont, name)
	}
	return f, nil
}

// Names lists the registered font names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.faces))
	for n := range r.faces {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
