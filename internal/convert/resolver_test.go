package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver(t *testing.T) {
	r := &Resolver{
		BaseDir:  "/ws/src/arm/urdf",
		Packages: map[string]string{"arm": "/ws/src/arm"},
	}

	tests := []struct {
		ref  string
		want string
	}{
		{"package://arm/meshes/base.stl", "/ws/src/arm/meshes/base.stl"},
		{"file:///opt/meshes/base.stl", "/opt/meshes/base.stl"},
		{"../meshes/base.stl", "/ws/src/arm/meshes/base.stl"},
		{"/abs/base.stl", "/abs/base.stl"},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := r.Resolve(tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := r.Resolve("package://gripper/meshes/finger.stl")
	assert.ErrorIs(t, err, ErrUnknownPackage)
}
