package meshconv

import (
	"github.com/Faultbox/urdf2iv/pkg/formats"
	"github.com/Faultbox/urdf2iv/pkg/inventor"
)

// convertSTL merges identical vertices into one coordinate list.
func convertSTL(req Request, override *inventor.Material) (*inventor.Separator, error) {
	stl, err := formats.ParseSTLFile(req.Path)
	if err != nil {
		return nil, err
	}

	coords := &inventor.Coordinate3{}
	index := map[[3]float32]int{}
	faces := &inventor.IndexedFaceSet{}
	for _, tri := range stl.Triangles {
		var face [3]int
		for i, v := range tri.Vertices {
			idx, ok := index[v]
			if !ok {
				idx = len(coords.Points)
				index[v] = idx
				p := [3]float64{float64(v[0]), float64(v[1]), float64(v[2])}
				coords.Points = append(coords.Points, scalePoint(p, req.Scale))
			}
			face[i] = idx
		}
		faces.AddFace(face[:], nil)
	}

	root := inventor.NewSeparator("")
	switch {
	case override != nil:
		root.Add(override)
	case req.Color != nil:
		root.Add(colorMaterial(*req.Color))
	}
	root.Add(coords, faces)
	return root, nil
}
