package catalog

import (
	"fmt"
	"sort"

	"github.com/Masterminds/semver/v3"
)

// Latest is the constraint keyword selecting the highest available version.
const Latest = "latest"

// SemverResolver picks versions using Masterminds/semver.
type SemverResolver struct{}

// NewSemverResolver creates a new SemverResolver.
func NewSemverResolver() *SemverResolver {
	return &SemverResolver{}
}

// Resolve converts a version constraint to an exact version from the available options.
// It returns the highest version that satisfies the constraint.
func (r *SemverResolver) Resolve(constraint string, available []string) (string, error) {
	c, err := parseConstraint(constraint)
	if err != nil {
		return "", err
	}

	var valid []*semver.Version
	for _, vStr := range available {
		v, err := semver.NewVersion(vStr)
		if err != nil {
			continue // invalid entries are never candidates
		}
		if c.Check(v) {
			valid = append(valid, v)
		}
	}

	v, ok := highest(valid)
	if !ok {
		return "", fmt.Errorf("no version satisfies constraint %q from available options", constraint)
	}
	return v.Original(), nil
}

// parseConstraint accepts the "latest" keyword, treated as ">= 0", and
// an empty constraint meaning the same.
func parseConstraint(constraint string) (*semver.Constraints, error) {
	if constraint == "" || constraint == Latest {
		constraint = ">= 0"
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return nil, fmt.Errorf("invalid version constraint %q: %w", constraint, err)
	}
	return c, nil
}

func highest(versions []*semver.Version) (*semver.Version, bool) {
	if len(versions) == 0 {
		return nil, false
	}
	sorted := make([]*semver.Version, len(versions))
	copy(sorted, versions)
	// Collection sorts ascending, so the last element is the highest.
	sort.Sort(semver.Collection(sorted))
	return sorted[len(sorted)-1], true
}
