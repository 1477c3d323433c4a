package meshconv

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Faultbox/urdf2iv/pkg/inventor"
)

// namedColors are the colours accepted as material overrides.
var namedColors = map[string][4]float64{
	"black":  {0.05, 0.05, 0.05, 1},
	"blue":   {0.1, 0.2, 0.8, 1},
	"green":  {0.1, 0.7, 0.2, 1},
	"grey":   {0.5, 0.5, 0.5, 1},
	"orange": {1, 0.5, 0, 1},
	"red":    {0.8, 0.1, 0.1, 1},
	"silver": {0.75, 0.75, 0.75, 1},
	"white":  {0.95, 0.95, 0.95, 1},
	"yellow": {0.9, 0.8, 0.1, 1},
}

// NamedMaterial returns the override material called name.
func NamedMaterial(name string) (*inventor.Material, error) {
	rgba, ok := namedColors[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownMaterial, name, strings.Join(MaterialNames(), ", "))
	}
	m := colorMaterial(rgba)
	m.Specular = [3]float64{0.3, 0.3, 0.3}
	m.Shininess = 0.2
	return m, nil
}

// MaterialNames lists the accepted override names.
func MaterialNames() []string {
	names := make([]string, 0, len(namedColors))
	for n := range namedColors {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
