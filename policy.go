package deque

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unsafe"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Policy holds the tuning knobs of a Deque. The zero value of ChunkCapacity
// and ReclaimInterval means "derive from the element type".
type Policy struct {
	// ChunkCapacity is the number of elements per chunk. Rounded up to a
	// power of two.
	ChunkCapacity int `toml:"chunk_capacity" yaml:"chunk_capacity"`
	// ReclaimInterval is the number of removed elements between two
	// reclamation passes.
	ReclaimInterval int `toml:"reclaim_interval" yaml:"reclaim_interval"`
	// ReclaimSlack is the number of chunks a reclamation pass keeps on top of
	// what the high-water mark requires.
	ReclaimSlack int `toml:"reclaim_slack" yaml:"reclaim_slack"`
	// CompactSlack is the number of free directory entries Compact leaves on
	// each side of the used span.
	CompactSlack int `toml:"compact_slack" yaml:"compact_slack"`
	// MinDirectory is the smallest directory ever allocated.
	MinDirectory int `toml:"min_directory" yaml:"min_directory"`
}

const (
	targetChunkBytes   = 4096
	minChunkCapacity   = 32
	maxChunkCapacity   = 4096
	reclaimChunkFactor = 8
)

// DefaultPolicy returns the policy used when none is supplied.
func DefaultPolicy() Policy {
	return Policy{
		ReclaimSlack: 2,
		CompactSlack: 1,
		MinDirectory: 4,
	}
}

// Validate reports whether every knob is within range.
func (p Policy) Validate() error {
	switch {
	case p.ChunkCapacity < 0:
		return errors.Wrapf(ErrInvalidPolicy, "chunk_capacity %d", p.ChunkCapacity)
	case p.ChunkCapacity > 1<<24:
		return errors.Wrapf(ErrInvalidPolicy, "chunk_capacity %d too large", p.ChunkCapacity)
	case p.ReclaimInterval < 0:
		return errors.Wrapf(ErrInvalidPolicy, "reclaim_interval %d", p.ReclaimInterval)
	case p.ReclaimSlack < 0:
		return errors.Wrapf(ErrInvalidPolicy, "reclaim_slack %d", p.ReclaimSlack)
	case p.CompactSlack < 0:
		return errors.Wrapf(ErrInvalidPolicy, "compact_slack %d", p.CompactSlack)
	case p.MinDirectory < 0:
		return errors.Wrapf(ErrInvalidPolicy, "min_directory %d", p.MinDirectory)
	}
	return nil
}

// resolve fills the type dependent knobs for elements of elemSize bytes and
// clamps anything out of range.
func (p Policy) resolve(elemSize uintptr) Policy {
	if p.ChunkCapacity <= 0 {
		c := maxChunkCapacity
		if elemSize > 0 {
			c = min(max(targetChunkBytes/int(elemSize), minChunkCapacity), maxChunkCapacity)
		}
		p.ChunkCapacity = c
	}
	p.ChunkCapacity = int(ceilPow2(uint(p.ChunkCapacity)))
	if p.ReclaimInterval <= 0 {
		p.ReclaimInterval = reclaimChunkFactor * p.ChunkCapacity
	}
	p.ReclaimSlack = max(p.ReclaimSlack, 0)
	p.CompactSlack = max(p.CompactSlack, 0)
	p.MinDirectory = max(p.MinDirectory, 1)
	return p
}

// ResolvedPolicy returns the policy a Deque[T] built from p would run with.
func ResolvedPolicy[T any](p Policy) Policy {
	var zero T
	return p.resolve(unsafe.Sizeof(zero))
}

// LoadPolicy reads a policy file on top of DefaultPolicy. The format is
// picked from the extension: .toml, .yaml or .yml.
func LoadPolicy(path string) (Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, errors.Wrapf(err, "read policy %s", path)
	}
	p, err := ParsePolicy(data, FormatOf(path))
	if err != nil {
		return Policy{}, errors.Wrapf(err, "load policy %s", path)
	}
	return p, nil
}

// ParsePolicy decodes data in the given format ("toml" or "yaml") on top of
// DefaultPolicy and validates the result.
func ParsePolicy(data []byte, format string) (Policy, error) {
	p := DefaultPolicy()
	if err := Decode(data, format, &p); err != nil {
		return Policy{}, err
	}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// FormatOf maps a file name to the format understood by Decode.
func FormatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return "toml"
	case ".yaml", ".yml":
		return "yaml"
	}
	return ""
}

// Decode unmarshals a TOML or YAML document into v. Unknown keys are
// rejected in both formats.
func Decode(data []byte, format string, v any) error {
	switch format {
	case "toml":
		md, err := toml.Decode(string(data), v)
		if err != nil {
			return errors.Wrap(err, "parse toml")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return errors.Errorf("parse toml: unknown key %q", undecoded[0].String())
		}
		return nil
	case "yaml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(v); err != nil && err != io.EOF {
			return errors.Wrap(err, "parse yaml")
		}
		return nil
	}
	return errors.Wrapf(ErrUnknownFormat, "%q", format)
}
