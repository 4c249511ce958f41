package prompts

import (
	"fmt"
	"strings"
	"sync"

	"github.com/joseph-ayodele/pdf-data-extractor/internal/common"
)

// Patch is a partial update; nil fields are left untouched.
type Patch struct {
	Instruction *string `json:"instruction,omitempty"`
	FormatHint  *string `json:"format_hint,omitempty"`
	Enabled     *bool   `json:"enabled,omitempty"`
}

// Registry is the per-session prompt list. It is owned by whoever owns the session; there is
// no process-wide registry.
type Registry struct {
	mu      sync.RWMutex
	prompts []ExtractionPrompt
}

// NewRegistry seeds a registry with the given prompts, or the built-in defaults when none.
func NewRegistry(seed ...ExtractionPrompt) *Registry {
	if len(seed) == 0 {
		seed = Defaults()
	}
	cp := make([]ExtractionPrompt, len(seed))
	copy(cp, seed)
	return &Registry{prompts: cp}
}

// List returns a copy of every prompt, enabled or not, in order.
func (r *Registry) List() []ExtractionPrompt {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ExtractionPrompt, len(r.prompts))
	copy(out, r.prompts)
	return out
}

// Get returns the prompt with the given title.
func (r *Registry) Get(title string) (ExtractionPrompt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.indexOf(title)
	if i < 0 {
		return ExtractionPrompt{}, fmt.Errorf("prompt %q: %w", title, common.ErrNotFound)
	}
	return r.prompts[i], nil
}

// Update applies p to the prompt with the given title and returns the result.
func (r *Registry) Update(title string, p Patch) (ExtractionPrompt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(title)
	if i < 0 {
		return ExtractionPrompt{}, fmt.Errorf("prompt %q: %w", title, common.ErrNotFound)
	}
	cur := r.prompts[i]
	if p.Instruction != nil {
		if strings.TrimSpace(*p.Instruction) == "" {
			return ExtractionPrompt{}, fmt.Errorf("prompt %q: instruction must not be empty: %w", title, common.ErrInvalidInput)
		}
		cur.Instruction = *p.Instruction
	}
	if p.FormatHint != nil {
		cur.FormatHint = *p.FormatHint
	}
	if p.Enabled != nil {
		cur.Enabled = *p.Enabled
	}
	r.prompts[i] = cur
	return cur, nil
}

// SetEnabled toggles a prompt on or off.
func (r *Registry) SetEnabled(title string, enabled bool) error {
	_, err := r.Update(title, Patch{Enabled: &enabled})
	return err
}

// Add appends a prompt; the title must be non-empty and unique.
func (r *Registry) Add(p ExtractionPrompt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if strings.TrimSpace(p.Title) == "" || strings.TrimSpace(p.Instruction) == "" {
		return fmt.Errorf("prompt needs a title and an instruction: %w", common.ErrInvalidInput)
	}
	if r.indexOf(p.Title) >= 0 {
		return fmt.Errorf("prompt %q already exists: %w", p.Title, common.ErrInvalidInput)
	}
	r.prompts = append(r.prompts, p)
	return nil
}

// Remove deletes the prompt with the given title.
func (r *Registry) Remove(title string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(title)
	if i < 0 {
		return fmt.Errorf("prompt %q: %w", title, common.ErrNotFound)
	}
	r.prompts = append(r.prompts[:i], r.prompts[i+1:]...)
	return nil
}

// Enabled returns the enabled prompts in list order.
func (r *Registry) Enabled() PromptSet {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(PromptSet, 0, len(r.prompts))
	for _, p := range r.prompts {
		if p.Enabled {
			out = append(out, p)
		}
	}
	return out
}

func (r *Registry) indexOf(title string) int {
	for i, p := range r.prompts {
		if p.Title == title {
			return i
		}
	}
	return -1
}
