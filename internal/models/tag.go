package models

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// UpdateTag is a category label attached to an update entry
type UpdateTag string

const (
	TagProjectLaunch  UpdateTag = "project-launch"
	TagDesignThinking UpdateTag = "design-thinking"
	TagBusiness       UpdateTag = "business"
	TagCommunity      UpdateTag = "community"
	TagLearning       UpdateTag = "learning"
	TagCaseStudy      UpdateTag = "case-study"
)

// DefaultVocabularyVersion is bumped whenever the built-in tag list changes.
const DefaultVocabularyVersion = "2"

// Vocabulary is the closed, ordered set of tags an entry may carry.
// Removing a tag is a breaking change: entries still using it fail validation.
type Vocabulary struct {
	Version string      `yaml:"version" json:"version"`
	List    []UpdateTag `yaml:"tags" json:"tags"`

	index map[UpdateTag]struct{}
}

// DefaultVocabulary returns the built-in tag set
func DefaultVocabulary() *Vocabulary {
	v, _ := NewVocabulary(DefaultVocabularyVersion, []UpdateTag{
		TagProjectLaunch,
		TagDesignThinking,
		TagBusiness,
		TagCommunity,
		TagLearning,
		TagCaseStudy,
	})
	return v
}

// NewVocabulary builds a vocabulary, rejecting empty or duplicated tags
func NewVocabulary(version string, tags []UpdateTag) (*Vocabulary, error) {
	if len(tags) == 0 {
		return nil, fmt.Errorf("vocabulary %q has no tags", version)
	}

	index := make(map[UpdateTag]struct{}, len(tags))
	list := make([]UpdateTag, 0, len(tags))
	for _, tag := range tags {
		tag = UpdateTag(strings.TrimSpace(string(tag)))
		if tag == "" {
			return nil, fmt.Errorf("vocabulary %q contains an empty tag", version)
		}
		if _, dup := index[tag]; dup {
			return nil, fmt.Errorf("vocabulary %q contains duplicate tag %q", version, tag)
		}
		index[tag] = struct{}{}
		list = append(list, tag)
	}

	return &Vocabulary{Version: version, List: list, index: index}, nil
}

// LoadVocabulary reads a vocabulary from a YAML file of the form
//
//	version: "3"
//	tags: [project-launch, learning]
func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tag vocabulary %s: %w", path, err)
	}

	var raw Vocabulary
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse tag vocabulary %s: %w", path, err)
	}

	return NewVocabulary(raw.Version, raw.List)
}

// Contains reports whether s is a member of the vocabulary
func (v *Vocabulary) Contains(s string) bool {
	if v == nil {
		return false
	}
	_, ok := v.index[UpdateTag(s)]
	return ok
}

// Tags returns the tags in vocabulary order
func (v *Vocabulary) Tags() []UpdateTag {
	out := make([]UpdateTag, len(v.List))
	copy(out, v.List)
	return out
}

func (v *Vocabulary) String() string {
	parts := make([]string, len(v.List))
	for i, tag := range v.List {
		parts[i] = string(tag)
	}
	return strings.Join(parts, ", ")
}
