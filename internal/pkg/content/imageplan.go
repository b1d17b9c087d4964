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

// ImgKind is the visual form planned for an article section.
type ImgKind string

const (
	ImgPhoto       ImgKind = "photo"
	ImgInfographic ImgKind = "infographic"
)

// InfoType is the infographic layout when ImgKind is infographic.
type InfoType string

const (
	InfoFlow      InfoType = "flow"
	InfoChecklist InfoType = "checklist"
	InfoCompare   InfoType = "compare"
	InfoMatrix    InfoType = "matrix"
	InfoRiskmap   InfoType = "riskmap"
	InfoScenario  InfoType = "scenario"
	InfoProsCons  InfoType = "proscons"
)

// ImageSlot plans one section image.
type ImageSlot struct {
	Kind     ImgKind  `json:"kind"`
	InfoType InfoType `json:"infoType,omitempty"`
}

// ImagePlan maps the four H2 sections to their planned images.
type ImagePlan map[string]ImageSlot

// BuildImagePlan assigns photo/infographic slots per section, varied by
// intent so the layout matches what the reader came for.
func BuildImagePlan(intent Intent) ImagePlan {
	plan := ImagePlan{
		"h2_1": {Kind: ImgPhoto},
		"h2_2": {Kind: ImgInfographic, InfoType: InfoChecklist},
		"h2_3": {Kind: ImgPhoto},
		"h2_4": {Kind: ImgInfographic, InfoType: InfoCompare},
	}

	switch intent {
	case IntentHowto:
		plan["h2_2"] = ImageSlot{Kind: ImgInfographic, InfoType: InfoFlow}
		plan["h2_4"] = ImageSlot{Kind: ImgInfographic, InfoType: InfoChecklist}
	case IntentCompare:
		plan["h2_2"] = ImageSlot{Kind: ImgInfographic, InfoType: InfoCompare}
		plan["h2_3"] = ImageSlot{Kind: ImgInfographic, InfoType: InfoMatrix}
		plan["h2_4"] = ImageSlot{Kind: ImgPhoto}
	case IntentPrice:
		plan["h2_2"] = ImageSlot{Kind: ImgInfographic, InfoType: InfoCompare}
		plan["h2_4"] = ImageSlot{Kind: ImgInfographic, InfoType: InfoChecklist}
	case IntentRisk:
		plan["h2_2"] = ImageSlot{Kind: ImgInfographic, InfoType: InfoRiskmap}
		plan["h2_3"] = ImageSlot{Kind: ImgInfographic, InfoType: InfoScenario}
		plan["h2_4"] = ImageSlot{Kind: ImgPhoto}
	case IntentReview:
		plan["h2_2"] = ImageSlot{Kind: ImgInfographic, InfoType: InfoProsCons}
		plan["h2_4"] = ImageSlot{Kind: ImgInfographic, InfoType: InfoMatrix}
	}

	return plan
}
