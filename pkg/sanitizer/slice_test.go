package sanitizer

import (
	"reflect"
	"testing"
)

func TestNormalizeIDs(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "lowercase and trim",
			input: []string{" 65F1A2B3C4D5E6F708091A2B "},
			want:  []string{"65f1a2b3c4d5e6f708091a2b"},
		},
		{
			name:  "remove duplicates",
			input: []string{"65f1a2b3c4d5e6f708091a2b", "65F1A2B3C4D5E6F708091A2B"},
			want:  []string{"65f1a2b3c4d5e6f708091a2b"},
		},
		{
			name:  "filter empty strings",
			input: []string{"", "  ", "aa"},
			want:  []string{"aa"},
		},
		{
			name:  "empty input",
			input: nil,
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeIDs(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeIDs(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeStringSlice_PreservesOrder(t *testing.T) {
	got := NormalizeStringSlice([]string{"b", "a", "b", "c"}, TrimAndNormalize)
	want := []string{"b", "a", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}
