// Package profile holds the learner profile that personalizes every prompt.
package profile

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrInvalidProfile = errors.New("profile: invalid profile")

// Fields is the on-disk and constructor shape of a profile.
type Fields struct {
	Name               string   `yaml:"name"`
	Age                int      `yaml:"age"`
	Interests          []string `yaml:"interests"`
	CommunicationStyle string   `yaml:"communication_style"`
	LearningStyle      string   `yaml:"learning_style"`
	FavoriteSubject    string   `yaml:"favorite_subject"`
}

// Profile is an immutable learner profile. Build one with New, Default, or
// Load; the zero value is empty.
type Profile struct {
	name               string
	age                int
	interests          []string
	communicationStyle string
	learningStyle      string
	favoriteSubject    string
}

// New validates f and returns the profile it describes.
func New(f Fields) (Profile, error) {
	if strings.TrimSpace(f.Name) == "" {
		return Profile{}, fmt.Errorf("%w: missing name", ErrInvalidProfile)
	}
	if f.Age < 0 {
		return Profile{}, fmt.Errorf("%w: negative age %d", ErrInvalidProfile, f.Age)
	}

	interests := make([]string, len(f.Interests))
	copy(interests, f.Interests)

	return Profile{
		name:               f.Name,
		age:                f.Age,
		interests:          interests,
		communicationStyle: f.CommunicationStyle,
		learningStyle:      f.LearningStyle,
		favoriteSubject:    f.FavoriteSubject,
	}, nil
}

// Default returns the built-in learner profile.
func Default() Profile {
	p, _ := New(Fields{
		Name:               "Mehmet",
		Age:                15,
		Interests:          []string{"math", "science"},
		CommunicationStyle: "formal",
		LearningStyle:      "visual",
		FavoriteSubject:    "math",
	})
	return p
}

// Parse decodes a YAML profile.
func Parse(raw []byte) (Profile, error) {
	var f Fields
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return Profile{}, fmt.Errorf("profile: parse error: %w", err)
	}
	return New(f)
}

// Load reads a YAML profile from path.
func Load(path string) (Profile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("profile: read %s: %w", path, err)
	}
	return Parse(raw)
}

func (p Profile) Name() string               { return p.name }
func (p Profile) Age() int                   { return p.age }
func (p Profile) CommunicationStyle() string { return p.communicationStyle }
func (p Profile) LearningStyle() string      { return p.learningStyle }
func (p Profile) FavoriteSubject() string    { return p.favoriteSubject }

// Interests returns a copy of the ordered interests.
func (p Profile) Interests() []string {
	out := make([]string, len(p.interests))
	copy(out, p.interests)
	return out
}

// Fields returns the profile's fields, suitable for serialization.
func (p Profile) Fields() Fields {
	return Fields{
		Name:               p.name,
		Age:                p.age,
		Interests:          p.Interests(),
		CommunicationStyle: p.communicationStyle,
		LearningStyle:      p.learningStyle,
		FavoriteSubject:    p.favoriteSubject,
	}
}
