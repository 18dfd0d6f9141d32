package story

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed fragments.yaml
var defaultFragmentsYAML []byte

// Kind names the narrative role a fragment plays.
type Kind string

const (
	KindOpening   Kind = "opening"
	KindMidpoint  Kind = "midpoint"
	KindEnding    Kind = "ending"
	KindEncounter Kind = "encounter"
)

// Kinds lists every pool a fragments file must provide.
var Kinds = []Kind{KindOpening, KindMidpoint, KindEnding, KindEncounter}

// fragmentVars is the data every fragment template is rendered with.
type fragmentVars struct {
	Heroes    string
	PartyNoun string
}

var sampleVars = fragmentVars{Heroes: "Aria and Borin", PartyNoun: "party"}

type fragmentsFile struct {
	Opening   []string `yaml:"opening"`
	Midpoint  []string `yaml:"midpoint"`
	Ending    []string `yaml:"ending"`
	Encounter []string `yaml:"encounter"`
}

func (f fragmentsFile) byKind() map[Kind][]string {
	return map[Kind][]string{
		KindOpening:   f.Opening,
		KindMidpoint:  f.Midpoint,
		KindEnding:    f.Ending,
		KindEncounter: f.Encounter,
	}
}

// Pools holds the parsed candidate fragments for each Kind.
type Pools struct {
	pools map[Kind][]*template.Template
}

// DefaultPools returns the fragments bundled with the binary.
func DefaultPools() (*Pools, error) {
	return ParsePools(defaultFragmentsYAML)
}

// LoadPools reads a fragments file from disk. An empty path yields DefaultPools.
func LoadPools(path string) (*Pools, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return DefaultPools()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("story: read fragments %s: %w", path, err)
	}
	pools, err := ParsePools(data)
	if err != nil {
		return nil, fmt.Errorf("story: %s: %w", path, err)
	}
	return pools, nil
}

// ParsePools decodes a fragments document. Every pool must be non-empty and
// every template must render against the known placeholders.
func ParsePools(data []byte) (*Pools, error) {
	var file fragmentsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse fragments: %w", err)
	}
	raw := file.byKind()
	pools := &Pools{pools: make(map[Kind][]*template.Template, len(Kinds))}
	for _, kind := range Kinds {
		texts := raw[kind]
		if len(texts) == 0 {
			return nil, fmt.Errorf("fragments: %s pool is empty", kind)
		}
		parsed := make([]*template.Template, 0, len(texts))
		for i, text := range texts {
			name := fmt.Sprintf("%s[%d]", kind, i)
			if strings.TrimSpace(text) == "" {
				return nil, fmt.Errorf("fragments: %s is blank", name)
			}
			tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
			if err != nil {
				return nil, fmt.Errorf("fragments: %w", err)
			}
			if _, err := execute(tmpl, sampleVars); err != nil {
				return nil, fmt.Errorf("fragments: %w", err)
			}
			parsed = append(parsed, tmpl)
		}
		pools.pools[kind] = parsed
	}
	return pools, nil
}

// Size reports how many candidates the pool for kind holds.
func (p *Pools) Size(kind Kind) int {
	if p == nil {
		return 0
	}
	return len(p.pools[kind])
}

func (p *Pools) render(kind Kind, idx int, vars fragmentVars) (string, error) {
	candidates := p.pools[kind]
	if idx < 0 || idx >= len(candidates) {
		return "", fmt.Errorf("story: %s fragment %d does not exist", kind, idx)
	}
	return execute(candidates[idx], vars)
}

func execute(tmpl *template.Template, vars fragmentVars) (string, error) {
	var b strings.Builder
	if err := tmpl.Execute(&b, vars); err != nil {
		return "", err
	}
	return strings.TrimSpace(b.String()), nil
}
