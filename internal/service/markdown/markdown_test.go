package markdown

import "testing"

func TestPlainText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "heading and emphasis",
			input: "# Lease Deed\n\nThis **deed** is made on *[Date]*.",
			want:  "Lease Deed\n\nThis deed is made on [Date].",
		},
		{
			name:  "lists",
			input: "- first\n- second\n\n1. one\n2. two\n",
			want:  "- first\n- second\n\n1. one\n2. two",
		},
		{
			name:  "links",
			input: "See [the Act](https://example.com/act) and https://example.com/raw.",
			want:  "See the Act (https://example.com/act) and https://example.com/raw.",
		},
		{
			name:  "strikethrough and soft breaks",
			input: "~~old~~ new\nline",
			want:  "old new line",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PlainText(tt.input); got != tt.want {
				t.Errorf("PlainText() =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}
