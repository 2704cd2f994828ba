package app

import (
	"encoding/json"
	"reflect"
	"regexp"
	"strings"

	"github.com/konturio/insights-llm-api/ports"
)

const maxPropertiesLength = 2000

var whitespaceRun = regexp.MustCompile(`\s+`)

// AreaProperties extracts the "properties" objects from a GeoJSON area,
// deduplicates and concatenates them, and truncates the result so the
// prompt stays bounded no matter what the client sends.
func AreaProperties(area ports.GeoJSON) string {
	var collected []string
	seen := make(map[string]struct{})

	var walk func(node map[string]any)
	walk = func(node map[string]any) {
		if node["type"] == "FeatureCollection" {
			features, _ := node["features"].([]any)
			for _, feature := range features {
				if child, ok := feature.(map[string]any); ok {
					walk(child)
				}
			}
			return
		}
		props, ok := node["properties"].(map[string]any)
		if !ok || len(props) == 0 {
			return
		}
		encoded, err := json.Marshal(props)
		if err != nil {
			return
		}
		key := string(encoded)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		collected = append(collected, key)
	}
	if area != nil {
		walk(area)
	}

	propsStr := strings.Join(collected, ", ")
	if propsStr == "" {
		propsStr = "not available"
	}
	if len(propsStr) > maxPropertiesLength {
		propsStr = propsStr[:maxPropertiesLength] + "..."
	}
	return "(input GeoJSON properties: " + propsStr + ")"
}

// AnalyticsPrompt composes the model prompt for an area report from the
// ranked sentences, indicator descriptions and user context. All
// whitespace runs are collapsed so multi-line assembly does not leak
// into the prompt.
func AnalyticsPrompt(sentences []string, indicatorDescription, bio, lang string, selectedArea, referenceArea ports.GeoJSON) string {
	referenceProps := AreaProperties(referenceArea)
	selectedProps := AreaProperties(selectedArea)

	// an identical reference area adds nothing over the world baseline
	if referenceArea != nil && reflect.DeepEqual(referenceArea, selectedArea) {
		referenceArea = nil
	}

	var b strings.Builder
	b.WriteString("Selected area properties: " + selectedProps)
	if referenceArea != nil {
		b.WriteString("\nUser's reference area properties: " + referenceProps + "\n\n" +
			`You are given values for three different areas. Selected region  area is the area you are writing the report about. ` +
			`Reference area is the one picked by user, likely the one that is easy for them to understand, likely being their home or primary region of operation. ` +
			`World values are given to put the difference between selected and reference area into perspective, or to serve as reference when no reference area is given. ` +
			`You may be provided with properties of the geographic objects of selected area and reference area. ` +
			`If properties are not available or lack names, call them "Area you selected" and "Your reference area" respectively. ` +
			`Start report with noting which area you will call what, something like: "Comparing your selected area to your reference area New Zhlobin".`)
	}
	b.WriteString("\nHere is the description of the user's selected area compared to ")
	if referenceArea != nil {
		b.WriteString("user's reference area and the world:")
	} else {
		b.WriteString("the world for the reference:")
	}
	b.WriteString(" " + strings.Join(sentences, ";\n") + " ")
	b.WriteString(indicatorDescription)
	b.WriteString("\nUser wrote in their bio: \"" + bio + "\" ")
	if lang != "" {
		b.WriteString("\nUser have selected a language: " + lang + ". Answer in that language.")
	}

	return strings.TrimSpace(whitespaceRun.ReplaceAllString(b.String(), " "))
}
