package crop

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPredict(t *testing.T) {
	tests := []struct {
		name   string
		sample Sample
		want   string
	}{
		{
			name:   "low moisture picks rice",
			sample: Sample{N: 20, P: 20, K: 20, PH: 6.5, Moisture: 200},
			want:   "Rice",
		},
		{
			name:   "high nitrogen picks cotton",
			sample: Sample{N: 90, P: 40, K: 30, PH: 6.8, Moisture: 400},
			want:   "Cotton",
		},
		{
			name:   "acidic soil picks potato",
			sample: Sample{N: 50, P: 30, K: 20, PH: 5.0, Moisture: 400},
			want:   "Potato",
		},
		{
			name:   "low nitrogen picks legumes",
			sample: Sample{N: 25, P: 30, K: 20, PH: 6.5, Moisture: 400},
			want:   "Legumes",
		},
		{
			name:   "default picks maize",
			sample: Sample{N: 50, P: 30, K: 20, PH: 6.5, Moisture: 400},
			want:   "Maize",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Predict(tt.sample).Label)
		})
	}
}

// A sample matching both the moisture and the nitrogen branch must
// resolve to the moisture branch.
func TestPredict_BranchPrecedence(t *testing.T) {
	s := Sample{N: 90, P: 20, K: 20, PH: 5.0, Moisture: 100}
	assert.Equal(t, "Rice", Predict(s).Label)

	// Same sample with moisture above the rice cutoff falls through
	// to the nitrogen branch.
	s.Moisture = 300
	assert.Equal(t, "Cotton", Predict(s).Label)
}

func TestPredict_LocalLabel(t *testing.T) {
	p := Predict(Sample{N: 20, Moisture: 100})
	assert.Equal(t, "Rice", p.Label)
	assert.Equal(t, "Dhaan", p.LocalLabel)
}

func TestCatalog(t *testing.T) {
	c := NewCatalog([]Profile{
		{Name: "Wheat"},
		{Name: "Rice"},
	})

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, "Wheat", c.At(0).Name)
	assert.Equal(t, []string{"Wheat", "Rice"}, c.Names())
}
