package prompts

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

type presetFile struct {
	Prompts []presetPrompt `yaml:"prompts" toml:"prompts"`
}

type presetPrompt struct {
	Title       string `yaml:"title" toml:"title"`
	Instruction string `yaml:"instruction" toml:"instruction"`
	Format      string `yaml:"format" toml:"format"`
	Enabled     *bool  `yaml:"enabled" toml:"enabled"`
}

// LoadFile reads a YAML preset file of the form
//
//	prompts:
//	  - title: Parties
//	    instruction: List the contracting parties.
//	    format: "Party A; Party B"
//	    enabled: true
//
// A file ending in .toml is read as TOML with a [[prompts]] array instead. Prompts default
// to enabled.
func LoadFile(path string) ([]ExtractionPrompt, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompts file: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return ParseTOML(b)
	}
	return Parse(b)
}

// Parse decodes preset YAML and validates the titles.
func Parse(b []byte) ([]ExtractionPrompt, error) {
	var pf presetFile
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&pf); err != nil {
		return nil, fmt.Errorf("decode prompts file: %w", err)
	}
	return pf.prompts()
}

// ParseTOML decodes preset TOML and validates the titles.
func ParseTOML(b []byte) ([]ExtractionPrompt, error) {
	var pf presetFile
	dec := toml.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&pf); err != nil {
		return nil, fmt.Errorf("decode prompts file: %w", err)
	}
	return pf.prompts()
}

func (pf presetFile) prompts() ([]ExtractionPrompt, error) {
	out := make([]ExtractionPrompt, 0, len(pf.Prompts))
	for _, p := range pf.Prompts {
		enabled := true
		if p.Enabled != nil {
			enabled = *p.Enabled
		}
		out = append(out, ExtractionPrompt{
			Title:       p.Title,
			Instruction: p.Instruction,
			FormatHint:  p.Format,
			Enabled:     enabled,
		})
	}
	if err := Validate(out); err != nil {
		return nil, fmt.Errorf("prompts file: %w", err)
	}
	return out, nil
}
