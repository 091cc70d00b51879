package transform

import (
	"strings"
	"testing"

	"studio/internal/raster"
)

func TestBuildHotspotPrompt(t *testing.T) {
	req := Request{
		Instruction: "remove the lamp post",
		Hotspot:     &Hotspot{X: 120, Y: 48},
	}
	prompt := BuildHotspotPrompt(req)

	if !strings.Contains(prompt, "remove the lamp post") {
		t.Fatalf("instruction missing from %q", prompt)
	}
	if !strings.Contains(prompt, "(x: 120, y: 48)") {
		t.Fatalf("hotspot coordinates missing from %q", prompt)
	}
	if !strings.HasSuffix(prompt, "Return only the edited image.") {
		t.Fatalf("prompt must end with the image-only directive: %q", prompt)
	}
}

func TestBuildHotspotPromptScale(t *testing.T) {
	req := Request{Instruction: "shrink the bird", Hotspot: &Hotspot{X: 1, Y: 1}}

	if prompt := BuildHotspotPrompt(req); strings.Contains(prompt, "%") {
		t.Fatalf("no scale sentence expected without a scale: %q", prompt)
	}

	req.ScalePercent = 100
	if prompt := BuildHotspotPrompt(req); strings.Contains(prompt, "100%") {
		t.Fatalf("default scale must not be mentioned: %q", prompt)
	}

	req.ScalePercent = 60
	if prompt := BuildHotspotPrompt(req); !strings.Contains(prompt, "60%") {
		t.Fatalf("scale sentence missing from %q", prompt)
	}
}

func TestBuildFilterPromptTitleCasesStyle(t *testing.T) {
	prompt := BuildFilterPrompt(Request{Instruction: "vintage film noir"})
	if !strings.Contains(prompt, `"Vintage Film Noir"`) {
		t.Fatalf("style should be title-cased and quoted: %q", prompt)
	}
}

func TestBuildAdjustPromptMentionsReference(t *testing.T) {
	base := Request{Instruction: "match the golden hour lighting"}
	if prompt := BuildAdjustPrompt(base); strings.Contains(prompt, "second image") {
		t.Fatalf("reference sentence without a reference: %q", prompt)
	}

	withRef := base
	withRef.Reference = &raster.Asset{}
	if prompt := BuildAdjustPrompt(withRef); !strings.Contains(prompt, "second image") {
		t.Fatalf("reference sentence missing from %q", prompt)
	}
}

func TestTransparentAndAuxiliaryClauses(t *testing.T) {
	prompt := BuildRemoveBackgroundPrompt(Request{
		Auxiliary:   "keep the hat",
		Transparent: true,
	})
	if !strings.Contains(prompt, "keep the hat.") {
		t.Fatalf("auxiliary clause missing from %q", prompt)
	}
	if !strings.Contains(prompt, "fully transparent background") {
		t.Fatalf("transparency clause missing from %q", prompt)
	}
}
