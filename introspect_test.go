package liveframe

import "testing"

func TestBodyElementCount(t *testing.T) {
	tests := []struct {
		name     string
		snapshot string
		want     int
	}{
		{
			name:     "single element",
			snapshot: `<html><body><p>hello</p></body></html>`,
			want:     1,
		},
		{
			name:     "empty body",
			snapshot: `<html><body></body></html>`,
			want:     0,
		},
		{
			name:     "text only is not an element",
			snapshot: `<html><body>just text</body></html>`,
			want:     0,
		},
		{
			name:     "whitespace only",
			snapshot: "<html><body>\n\t  \n</body></html>",
			want:     0,
		},
		{
			name:     "multiple children count once each",
			snapshot: `<html><body><div><span>deep</span></div><p>a</p><ul><li>x</li></ul></body></html>`,
			want:     3,
		},
		{
			name:     "fragment without html wrapper",
			snapshot: `<div>content</div>`,
			want:     1,
		},
		{
			name:     "comments are not elements",
			snapshot: `<html><body><!-- pending --></body></html>`,
			want:     0,
		},
		{
			name:     "empty input parses to empty body",
			snapshot: "",
			want:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := bodyElementCount(tt.snapshot)
			if err != nil {
				t.Fatalf("bodyElementCount(%q) error: %v", tt.snapshot, err)
			}
			if got != tt.want {
				t.Errorf("bodyElementCount(%q) = %d, want %d", tt.snapshot, got, tt.want)
			}
		})
	}
}
