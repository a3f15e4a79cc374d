package liveframe

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// FrameSpec describes one embedded frame slot: where it renders, what it
// loads, and how stubbornly it retries. Pointer fields distinguish an
// omitted manifest value from an explicit zero.
type FrameSpec struct {
	Container string `yaml:"container" validate:"required"`
	URL       string `yaml:"url" validate:"required,url"`

	// Optional element ids for the binding. When the built-in host page is
	// used these are filled in by normalization; custom pages leave absent
	// elements empty and the corresponding commands are skipped.
	Loader  string `yaml:"loader,omitempty"`
	Status  string `yaml:"status,omitempty"`
	Wrapper string `yaml:"wrapper,omitempty"`

	RetryCount   *int  `yaml:"retry_count,omitempty" validate:"omitempty,gte=0"`
	RetryDelayMs *int  `yaml:"retry_delay_ms,omitempty" validate:"omitempty,gte=0"`
	ShowLoader   *bool `yaml:"show_loader,omitempty"`
	CacheBust    *bool `yaml:"cache_bust,omitempty"`
}

// Binding returns the viewport binding resolved from the frame's element ids.
func (f FrameSpec) Binding() ViewportBinding {
	return ViewportBinding{
		Container: f.Container,
		Loader:    f.Loader,
		Status:    f.Status,
		Wrapper:   f.Wrapper,
	}
}

// Config returns the frame's retry configuration with defaults applied for
// omitted fields.
func (f FrameSpec) Config() FrameConfig {
	cfg := DefaultFrameConfig()
	if f.RetryCount != nil {
		cfg.RetryCount = *f.RetryCount
	}
	if f.RetryDelayMs != nil {
		cfg.RetryDelay = time.Duration(*f.RetryDelayMs) * time.Millisecond
	}
	if f.ShowLoader != nil {
		cfg.ShowLoader = *f.ShowLoader
	}
	if f.CacheBust != nil {
		cfg.CacheBust = *f.CacheBust
	}
	return cfg
}

// Manifest is the startup collaborator: the ordered list of frames the host
// embeds at page initialization. The loader core has no opinion on how the
// manifest is produced; a YAML file and a literal struct are equally fine.
type Manifest struct {
	Title  string      `yaml:"title,omitempty"`
	Frames []FrameSpec `yaml:"frames" validate:"required,min=1,dive"`
}

// LoadManifest reads and parses a manifest from a YAML file
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return ParseManifest(data)
}

// ParseManifest parses and validates manifest YAML
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks structural constraints: required fields, URL syntax,
// non-negative retry settings, and container id uniqueness.
func (m *Manifest) Validate() error {
	if err := messageValidator.Struct(m); err != nil {
		return ValidationToMultiError(err)
	}

	seen := make(map[string]struct{}, len(m.Frames))
	for _, f := range m.Frames {
		if _, dup := seen[f.Container]; dup {
			return fmt.Errorf("duplicate container id %q in manifest", f.Container)
		}
		seen[f.Container] = struct{}{}
	}
	return nil
}

// normalize fills element ids for the built-in host page, which creates a
// wrapper, loader, and status element for every slot. Hosts embedding
// frames in their own markup skip this and keep absent ids absent.
func (m *Manifest) normalize() {
	for i := range m.Frames {
		f := &m.Frames[i]
		if f.Loader == "" {
			f.Loader = f.Container + "-loader"
		}
		if f.Status == "" {
			f.Status = f.Container + "-status"
		}
		if f.Wrapper == "" {
			f.Wrapper = f.Container + "-wrap"
		}
	}
}
