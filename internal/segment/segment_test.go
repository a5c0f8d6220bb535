package segment

import (
	"reflect"
	"testing"
)

func TestRegexSplit(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "terminated sentences",
			text: "The cat sat on the mat. Dogs bark loudly at night! Why?",
			want: []string{"The cat sat on the mat.", "Dogs bark loudly at night!", "Why?"},
		},
		{
			name: "unterminated tail",
			text: "First one.  Second one without a stop",
			want: []string{"First one.", "Second one without a stop"},
		},
		{
			name: "blank input",
			text: "   ",
			want: nil,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := Regex{}.Split(test.text)
			if !reflect.DeepEqual(got, test.want) {
				t.Errorf("Split() = %q, want %q", got, test.want)
			}
		})
	}
}

func TestPunktSplit(t *testing.T) {
	p, err := NewPunkt()
	if err != nil {
		t.Fatalf("NewPunkt() error: %v", err)
	}

	got := p.Split("The cat sat on the mat. Dogs bark loudly at night.")
	want := []string{"The cat sat on the mat.", "Dogs bark loudly at night."}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Split() = %q, want %q", got, want)
	}

	if got := p.Split(""); len(got) != 0 {
		t.Errorf("Split(\"\") = %q, want no sentences", got)
	}
}

func TestNew(t *testing.T) {
	if _, err := New("regex"); err != nil {
		t.Errorf("New(regex) error: %v", err)
	}
	if _, err := New("punkt"); err != nil {
		t.Errorf("New(punkt) error: %v", err)
	}
	if _, err := New("whitespace"); err == nil {
		t.Errorf("New(whitespace) should fail")
	}
}
