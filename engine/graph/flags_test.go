package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlagValues(t *testing.T) {
	assert.Equal(t, NodeFlags(1), FlagNumber)
	assert.Equal(t, NodeFlags(1<<4), FlagPrimitiveSphere)
	assert.Equal(t, NodeFlags(1<<10), FlagTexture)
	assert.Equal(t, NodeFlags(1<<16), FlagOutput)
	assert.Equal(t, NodeFlags(0b11111<<5), FlagMaterials)
	assert.Equal(t, FlagVector|FlagColor|FlagNumber, FlagTypicalVectorInput)
}

func TestIsCompatible(t *testing.T) {
	tests := []struct {
		name    string
		out, in NodeFlags
		want    bool
	}{
		{"number into vector pin", FlagNumber, FlagTypicalVectorInput, true},
		{"color into vector pin", FlagColor, FlagTypicalVectorInput, true},
		{"vector into number pin", FlagVector, FlagTypicalNumberInput, false},
		{"metal into material pin", FlagMaterialMetal, FlagMaterials, true},
		{"texture into material pin", FlagTexture | FlagString, FlagMaterials, false},
		{"anything into collection", FlagCamera, FlagAll, true},
		{"sphere into scene", FlagPrimitiveSphere, FlagPrimitives | FlagCollection, true},
		{"nothing", 0, FlagAll, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCompatible(tt.out, tt.in))
			assert.Equal(t, tt.want, IsCompatible(tt.in, tt.out), "depends only on overlap")
			assert.Equal(t, tt.out&tt.in != 0, IsCompatible(tt.out, tt.in))
		})
	}
}

func TestFlagString(t *testing.T) {
	assert.Equal(t, "NONE", NodeFlags(0).String())
	assert.Equal(t, "ALL", FlagAll.String())
	assert.Equal(t, "STRING|TEXTURE", (FlagTexture | FlagString).String())
	assert.Equal(t, "NUMBER|VECTOR|COLOR", FlagTypicalVectorInput.String())
	assert.True(t, FlagMaterials.Has(FlagMaterialEmissive))
	assert.False(t, FlagMaterialEmissive.Has(FlagMaterials))
}
