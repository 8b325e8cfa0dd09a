package schema

import "testing"

func TestPlausible(t *testing.T) {
	tests := []struct {
		name    string
		payload any
		want    bool
	}{
		{
			name:    "array of plant records",
			payload: []any{map[string]any{"Plant Name": "A", "Status": "operating"}},
			want:    true,
		},
		{
			name:    "single record object",
			payload: map[string]any{"capacity_mw": 600.0},
			want:    true,
		},
		{
			name:    "keyword inside a longer key",
			payload: map[string]any{"total_coal_capacity": 1}, // "coal" substring
			want:    true,
		},
		{
			name:    "navigation menu",
			payload: map[string]any{"menu": "home", "links": "about"},
			want:    false,
		},
		{
			name:    "empty array",
			payload: []any{},
			want:    false,
		},
		{
			name:    "array of scalars",
			payload: []any{"a", "b"},
			want:    false,
		},
		{
			name:    "empty object",
			payload: map[string]any{},
			want:    false,
		},
		{
			name:    "scalar",
			payload: 42.0,
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Plausible(tt.payload); got != tt.want {
				t.Errorf("Plausible(%v) = %v, want %v", tt.payload, got, tt.want)
			}
		})
	}
}
