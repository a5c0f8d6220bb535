package summarizer

import (
	"errors"
	"testing"

	"github.com/localrivet/clustersummary/internal/errortypes"
	"github.com/localrivet/clustersummary/internal/preprocess"
)

func TestLeadSummarizer_Initialize(t *testing.T) {
	summarizer := NewLeadSummarizer(nil)
	if err := summarizer.Initialize(); err != nil {
		t.Errorf("Initialize() error = %v, want nil", err)
	}
}

func TestLeadSummarizer_Summarize(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    string
		wantErr error
	}{
		{
			name: "single sentence",
			text: "This is a short text.",
			want: "This is a short text.",
		},
		{
			name: "four sentences keep two",
			text: "The first sentence is here. The second sentence follows it. A third one appears. The fourth closes it.",
			want: "The first sentence is here. The second sentence follows it.",
		},
		{
			name: "short sentences are skipped",
			text: "Hi. Ok then. The cat sat on the mat. Dogs bark at night.",
			want: "The cat sat on the mat. Dogs bark at night.",
		},
		{
			name:    "nothing survives",
			text:    "Hi. Ok. Yes!",
			wantErr: errortypes.ErrEmptyDocument,
		},
		{
			name:    "empty text",
			text:    "",
			wantErr: errortypes.ErrEmptyDocument,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := NewLeadSummarizer(nil).Summarize(test.text)
			if test.wantErr != nil {
				if !errors.Is(err, test.wantErr) {
					t.Fatalf("Summarize() error = %v, want %v", err, test.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Summarize() error = %v", err)
			}
			if got != test.want {
				t.Errorf("Summarize() = %q, want %q", got, test.want)
			}
		})
	}
}

func TestLeadSummarizer_InvalidCount(t *testing.T) {
	s := NewLeadSummarizer(&LeadSummarizerConfig{ClusterCount: func(int) int { return 0 }})
	_, err := s.Summarize("The cat sat on the mat.")
	if !errors.Is(err, errortypes.ErrInvalidClusterCount) {
		t.Errorf("Summarize() error = %v, want ErrInvalidClusterCount", err)
	}
}

func TestLeadSummarizer_UsesConfiguredPreprocessing(t *testing.T) {
	s := NewLeadSummarizer(&LeadSummarizerConfig{
		Preprocessor: preprocess.New(0),
		Separator:    " | ",
	})

	got, err := s.Summarize("Go. Rust. Go go go here now. Rust rust rust here now.")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if want := "Go. | Rust."; got != want {
		t.Errorf("Summarize() = %q, want %q", got, want)
	}

	joined, err := NewLeadSummarizer(&LeadSummarizerConfig{}).Summarize("The first sentence is here. The second sentence follows it.")
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if want := "The first sentence is here.The second sentence follows it."; joined != want {
		t.Errorf("Summarize() with empty separator = %q, want %q", joined, want)
	}
}
