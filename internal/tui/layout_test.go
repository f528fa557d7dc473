package tui

import (
	"strings"
	"testing"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		width int
		want  string
	}{
		{"fits", "Lagos", 10, "Lagos"},
		{"exact", "Lagos", 5, "Lagos"},
		{"ellipsis", "https://cdn.vitashop.example/p/1.jpg", 10, "https://c…"},
		{"zero width", "Lagos", 0, ""},
		{"too narrow for ellipsis", "Lagos", 3, "Lag"},
		{"multibyte runes", "Ọláolúwa Adébáyọ", 8, "Ọláolúw…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.input, tt.width); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.width, got, tt.want)
			}
		})
	}
}

func TestPadRight(t *testing.T) {
	if got := PadRight("O+", 5); got != "O+   " {
		t.Errorf("PadRight = %q", got)
	}
	if got := PadRight("Genotype", 4); got != "Genotype" {
		t.Errorf("PadRight should not cut, got %q", got)
	}
}

func TestContentSize(t *testing.T) {
	widths := []struct{ term, want int }{
		{80, 80},
		{30, 40},
		{200, MaxContentWidth},
	}
	for _, tt := range widths {
		if got := ContentWidth(tt.term, 40, MaxContentWidth); got != tt.want {
			t.Errorf("ContentWidth(%d) = %d, want %d", tt.term, got, tt.want)
		}
	}
	if got := ContentWidth(300, 40, 0); got != 300 {
		t.Errorf("ContentWidth without cap = %d", got)
	}

	heights := []struct{ term, want int }{
		{40, 40 - chromeLines},
		{8, 5},
		{3, 5},
	}
	for _, tt := range heights {
		if got := ContentHeight(tt.term, chromeLines); got != tt.want {
			t.Errorf("ContentHeight(%d) = %d, want %d", tt.term, got, tt.want)
		}
	}
}

func TestSideBySide(t *testing.T) {
	t.Run("wide terminal joins panels", func(t *testing.T) {
		out := SideBySide("PERSONAL", "HEALTH", 80, 2)
		if strings.Contains(out, "\n\n") || !strings.Contains(out, "PERSONAL  HEALTH") {
			t.Errorf("expected one row, got %q", out)
		}
	})

	t.Run("narrow terminal stacks panels", func(t *testing.T) {
		out := SideBySide(strings.Repeat("P", 50), strings.Repeat("H", 50), 60, 2)
		if !strings.Contains(out, "\n\n") {
			t.Errorf("expected stacked layout, got %q", out)
		}
	})
}

func TestRows_AlignsLabels(t *testing.T) {
	theme := NewTheme("")
	out := theme.Rows([][2]string{{"City", "Lagos"}, {"Blood Group", "O+"}})

	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if strings.Index(lines[0], "Lagos") != strings.Index(lines[1], "O+") {
		t.Errorf("values not aligned:\n%s", out)
	}
}

func TestPanel_ContainsTitleAndContent(t *testing.T) {
	theme := NewTheme("")
	out := theme.Panel("HEALTH", "Genotype AA", 40)

	if !strings.Contains(out, "HEALTH") || !strings.Contains(out, "Genotype AA") {
		t.Errorf("unexpected panel:\n%s", out)
	}
}
