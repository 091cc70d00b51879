package transform

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// BuildHotspotPrompt phrases a localized retouch so the model edits only the
// region around the hotspot and returns the full frame.
func BuildHotspotPrompt(req Request) string {
	parts := []string{}
	instruction := strings.TrimSpace(req.Instruction)
	if instruction != "" {
		parts = append(parts, fmt.Sprintf("Perform a natural, localized edit on the provided image: %s.", instruction))
	}
	if req.Hotspot != nil {
		parts = append(parts, fmt.Sprintf("Focus the edit on the area around pixel coordinates (x: %d, y: %d).", req.Hotspot.X, req.Hotspot.Y))
	}
	if req.ScalePercent > 0 && req.ScalePercent != 100 {
		parts = append(parts, fmt.Sprintf("Scale the affected subject to about %d%% of its current size.", req.ScalePercent))
	}
	parts = append(parts, "Blend the edit seamlessly with the surrounding pixels and leave the rest of the image untouched.")
	return finishPrompt(parts, req)
}

// BuildFilterPrompt phrases a whole-image stylistic filter.
func BuildFilterPrompt(req Request) string {
	parts := []string{}
	if style := strings.TrimSpace(req.Instruction); style != "" {
		parts = append(parts, fmt.Sprintf("Apply the %q style to the entire image.", titleCaser.String(style)))
	}
	parts = append(parts, "Preserve the original composition and subjects; change only the stylistic rendering.")
	return finishPrompt(parts, req)
}

// BuildAdjustPrompt phrases a global adjustment, optionally guided by a
// secondary reference image supplied as a second inline part.
func BuildAdjustPrompt(req Request) string {
	parts := []string{}
	if instruction := strings.TrimSpace(req.Instruction); instruction != "" {
		parts = append(parts, fmt.Sprintf("Apply a global adjustment to the image: %s.", instruction))
	}
	if req.Reference != nil {
		parts = append(parts, "A second image is provided as a reference; match its look where the instruction calls for it.")
	}
	parts = append(parts, "Keep the result photorealistic and the framing identical.")
	return finishPrompt(parts, req)
}

// BuildFaceSwapPrompt phrases a face swap between the source image and the
// reference portrait.
func BuildFaceSwapPrompt(req Request) string {
	parts := []string{
		"Replace the face of the main subject in the first image with the face from the second image.",
		"Match skin tone, lighting and head pose so the swap looks natural.",
	}
	return finishPrompt(parts, req)
}

// BuildRemoveBackgroundPrompt phrases a background removal.
func BuildRemoveBackgroundPrompt(req Request) string {
	parts := []string{
		"Remove the background completely, keeping only the main subject with clean edges.",
	}
	return finishPrompt(parts, req)
}

func finishPrompt(parts []string, req Request) string {
	if aux := strings.TrimSpace(req.Auxiliary); aux != "" {
		parts = append(parts, aux+".")
	}
	if req.Transparent {
		parts = append(parts, "Output the result with a fully transparent background (alpha channel, no backdrop).")
	}
	parts = append(parts, "Return only the edited image.")
	return strings.Join(parts, " ")
}
