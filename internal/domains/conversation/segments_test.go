package conversation

import "testing"

func TestSplitSegments(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "sentences",
			in:   "I found 3 products. The cheapest is hummus. Want me to add it?",
			want: []string{"I found 3 products.", "The cheapest is hummus.", "Want me to add it?"},
		},
		{
			name: "no terminal punctuation",
			in:   "your cart is empty",
			want: []string{"your cart is empty"},
		},
		{
			name: "trailing fragment kept",
			in:   "Done! Anything else",
			want: []string{"Done!", "Anything else"},
		},
		{
			name: "arabic question mark",
			in:   "وجدت منتجين؟ نعم.",
			want: []string{"وجدت منتجين؟", "نعم."},
		},
		{
			name: "newline splits",
			in:   "first line\nsecond line",
			want: []string{"first line", "second line"},
		},
		{
			name: "empty",
			in:   "   ",
			want: nil,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := SplitSegments(c.in)
			if len(got) != len(c.want) {
				t.Fatalf("expected %d segments %v, got %v", len(c.want), c.want, got)
			}
			for i := range c.want {
				if got[i] != c.want[i] {
					t.Errorf("segment %d: expected %q, got %q", i, c.want[i], got[i])
				}
			}
		})
	}
}
