// Copyright 2026 Pressline Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package content

import (
	"bytes"
	"crypto/sha256"
	"image"
	"image/color"
	"image/png"
)

// Deterministic placeholder renderers. Real rendering is an external
// collaborator; these produce valid PNG bytes whose content is a stable
// function of the input, so packaging and storage paths are exercised
// end to end.

var (
	gold  = color.RGBA{R: 0xd4, G: 0xaf, B: 0x37, A: 0xff}
	white = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	gray  = color.RGBA{R: 0xf6, G: 0xf6, B: 0xf6, A: 0xff}
)

func fillRect(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

func strokeRect(img *image.RGBA, x0, y0, x1, y1, width int, c color.RGBA) {
	fillRect(img, x0, y0, x1, y0+width, c)
	fillRect(img, x0, y1-width, x1, y1, c)
	fillRect(img, x0, y0, x0+width, y1, c)
	fillRect(img, x1-width, y0, x1, y1, c)
}

// seedMark paints a small block pattern derived from the input hash, so two
// different inputs produce visibly different placeholder images.
func seedMark(img *image.RGBA, seed string, y int) {
	sum := sha256.Sum256([]byte(seed))
	for i, b := range sum[:16] {
		c := gray
		if b%2 == 0 {
			c = gold
		}
		x := 70 + i*24
		fillRect(img, x, y, x+16, y+16, c)
	}
}

func encodePNG(img *image.RGBA) []byte {
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}

// TopCardInput describes the top card to render.
type TopCardInput struct {
	TitleShort  string
	LabelsShort []string
}

// RenderTopCardPNG renders the 1200x630 top card placeholder.
func RenderTopCardPNG(input TopCardInput) []byte {
	const w, h = 1200, 630
	img := image.NewRGBA(image.Rect(0, 0, w, h))

	fillRect(img, 0, 0, w, h, white)
	strokeRect(img, 20, 20, w-20, h-20, 10, gold)
	seedMark(img, input.TitleShort, 100)

	// Three label tiles.
	baseY, gapX := 230, 360
	for i := 0; i < 3; i++ {
		x := 120 + i*gapX
		fillRect(img, x, baseY, x+140, baseY+140, gray)
		strokeRect(img, x, baseY, x+140, baseY+140, 4, gold)
		label := ""
		if i < len(input.LabelsShort) {
			label = input.LabelsShort[i]
		}
		seedMark(img, label, baseY+170)
	}

	return encodePNG(img)
}

// InfographicInput describes one infographic to render.
type InfographicInput struct {
	Title    string
	InfoType InfoType
	Labels   []string
}

func padLabels(labels []string, size int) []string {
	out := make([]string, 0, size)
	for _, l := range labels {
		if l != "" {
			out = append(out, l)
		}
	}
	for len(out) < size {
		out = append(out, "포인트")
	}
	return out[:size]
}

// RenderInfographicPNG renders the 1200x800 infographic placeholder. The
// box layout varies by info type; labels become seed marks.
func RenderInfographicPNG(input InfographicInput) []byte {
	const w, h = 1200, 800
	img := image.NewRGBA(image.Rect(0, 0, w, h))

	fillRect(img, 0, 0, w, h, white)
	strokeRect(img, 24, 24, w-24, h-24, 8, gold)
	seedMark(img, input.Title+":"+string(input.InfoType), 70)

	labels := padLabels(input.Labels, 4)

	switch input.InfoType {
	case InfoFlow:
		// Three boxes left to right.
		for i := 0; i < 3; i++ {
			x := 90 + i*400
			fillRect(img, x, 220, x+280, 380, gray)
			strokeRect(img, x, 220, x+280, 380, 3, gold)
			seedMark(img, labels[i], 410)
		}
	case InfoCompare, InfoProsCons:
		// Two columns.
		for i := 0; i < 2; i++ {
			x := 120 + i*520
			fillRect(img, x, 200, x+440, 640, gray)
			strokeRect(img, x, 200, x+440, 640, 3, gold)
			seedMark(img, labels[i], 670)
		}
	case InfoMatrix:
		// Two by two grid.
		for i := 0; i < 4; i++ {
			x := 140 + (i%2)*480
			y := 180 + (i/2)*280
			fillRect(img, x, y, x+440, y+240, gray)
			strokeRect(img, x, y, x+440, y+240, 3, gold)
		}
		seedMark(img, labels[0]+labels[1], 720)
	default:
		// Checklist, riskmap, scenario: four stacked rows.
		for i := 0; i < 4; i++ {
			y := 210 + i*120
			fillRect(img, 140, y, 1060, y+90, gray)
			strokeRect(img, 140, y, 1060, y+90, 3, gold)
			seedMark(img, labels[i], y+30)
		}
	}

	return encodePNG(img)
}
