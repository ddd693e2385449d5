package render

import "testing"

func TestHexColour(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"#840077", 0x840077},
		{"840077", 0x840077},
		{" #1FFB2F ", 0x1FFB2F},
		{"", 0},
		{"not-a-colour", 0},
	}
	for _, c := range cases {
		if got := HexColour(c.in); got != c.want {
			t.Errorf("HexColour(%q) = %#x, want %#x", c.in, got, c.want)
		}
	}
}

func TestEmbed(t *testing.T) {
	e := Embed("Ticket Closed", "details", ColourRed, "https://example.com/img.png")
	if e.Title != "Ticket Closed" {
		t.Errorf("Title = %q", e.Title)
	}
	if e.Color != 0xF91607 {
		t.Errorf("Color = %#x", e.Color)
	}
	if e.Image == nil || e.Image.URL != "https://example.com/img.png" {
		t.Errorf("Image = %+v", e.Image)
	}
	if e.Footer == nil || e.Footer.Text == "" {
		t.Error("expected footer")
	}
}

func TestEmbedNoImage(t *testing.T) {
	e := Embed("Member join", "hi", ColourGreen, "")
	if e.Image != nil {
		t.Errorf("Image = %+v, want nil", e.Image)
	}
}
