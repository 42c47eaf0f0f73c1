package domain

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// StepID identifies a step by its output name.
type StepID uint64

// ID returns the identity of the step. Steps sharing a name share an ID.
func (s *Step) ID() StepID {
	return NameID(s.Name)
}

// NameID returns the identity of the step named name.
func NameID(name string) StepID {
	return StepID(xxhash.Sum64String(name))
}

// Fingerprint hashes the step definition: kind, name, flags and, recursively, its children.
// Two steps with the same name and fingerprint describe the same artifact.
func (s *Step) Fingerprint() uint64 {
	d := xxhash.New()
	s.writeDefinition(d)
	return d.Sum64()
}

func (s *Step) writeDefinition(d *xxhash.Digest) {
	_, _ = d.WriteString(s.Kind.String())
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(s.Name)
	_, _ = d.Write([]byte{0})

	// Everything else on a file step is never acted upon.
	if s.IsFile() {
		return
	}

	_, _ = d.Write([]byte{byte(s.Debug), byte(s.Optimize), 0})
	for _, flag := range s.LinkerFlags {
		_, _ = d.WriteString(flag)
		_, _ = d.Write([]byte{0})
	}
	_, _ = d.Write([]byte{0})

	writeChildren(d, s.Srcs)
	writeChildren(d, s.Deps)
}

func writeChildren(d *xxhash.Digest, children []*Step) {
	var buf [8]byte
	for _, child := range children {
		binary.LittleEndian.PutUint64(buf[:], child.Fingerprint())
		_, _ = d.Write(buf[:])
	}
	_, _ = d.Write([]byte{0})
}
