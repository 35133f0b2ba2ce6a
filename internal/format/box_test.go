package format

import (
	"strings"
	"testing"
)

func TestWordWrap(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  []string
	}{
		{
			name:  "short_text_stays_on_one_line",
			text:  "hello world",
			width: 80,
			want:  []string{"hello world"},
		},
		{
			name:  "wraps_at_word_boundaries",
			text:  "the quick brown fox jumps over the lazy dog",
			width: 20,
			want:  []string{"the quick brown fox", "jumps over the lazy", "dog"},
		},
		{
			name:  "empty_string",
			text:  "",
			width: 40,
			want:  []string{""},
		},
		{
			name:  "overlong_word_gets_its_own_line",
			text:  "ok superlongwordthatexceedswidth ok",
			width: 10,
			want:  []string{"ok", "superlongwordthatexceedswidth", "ok"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wordWrap(tt.text, tt.width)
			if len(got) != len(tt.want) {
				t.Fatalf("wordWrap(%q, %d) = %v, want %v", tt.text, tt.width, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("wordWrap(%q, %d)[%d] = %q, want %q", tt.text, tt.width, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestFormatBorderedText(t *testing.T) {
	t.Run("title_appears_in_top_border", func(t *testing.T) {
		result := FormatBorderedText("Some text here", "git-worklens")

		lines := strings.Split(result, "\n")
		if len(lines) < 3 {
			t.Fatalf("expected top border, content, bottom border, got %d lines", len(lines))
		}
		if !strings.Contains(lines[0], "git-worklens") {
			t.Errorf("title missing from top border: %q", lines[0])
		}
		if !strings.HasPrefix(lines[0], "┌") || !strings.HasSuffix(lines[0], "┐") {
			t.Errorf("malformed top border: %q", lines[0])
		}
	})

	t.Run("no_title_gives_plain_border", func(t *testing.T) {
		result := FormatBorderedText("Some text here", "")

		top := strings.Split(result, "\n")[0]
		inner := strings.TrimSuffix(strings.TrimPrefix(top, "┌"), "┐")
		if strings.ReplaceAll(inner, "─", "") != "" {
			t.Errorf("plain border should be horizontal lines only: %q", top)
		}
	})

	t.Run("blank_line_separates_paragraphs", func(t *testing.T) {
		result := FormatBorderedText("First paragraph.\n\nSecond paragraph.", "")

		if !strings.Contains(result, "First paragraph.") || !strings.Contains(result, "Second paragraph.") {
			t.Fatalf("missing paragraph content:\n%s", result)
		}
		foundEmpty := false
		lines := strings.Split(result, "\n")
		for _, line := range lines[1 : len(lines)-1] {
			body := strings.Trim(line, "│ ")
			if body == "" {
				foundEmpty = true
				break
			}
		}
		if !foundEmpty {
			t.Error("expected an empty row between paragraphs")
		}
	})

	t.Run("single_line_makes_three_row_box", func(t *testing.T) {
		result := FormatBorderedText("Hi", "")

		lines := strings.Split(result, "\n")
		if len(lines) != 3 {
			t.Fatalf("expected 3 lines, got %d:\n%s", len(lines), result)
		}
		bottom := lines[2]
		if !strings.HasPrefix(bottom, "└") || !strings.HasSuffix(bottom, "┘") {
			t.Errorf("malformed bottom border: %q", bottom)
		}
	})
}
