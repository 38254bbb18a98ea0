package gemini

import (
	"fmt"
	"strings"

	"github.com/sathizz7/Street-View-Analysis/internal/domain"
)

// buildPrompt assembles the system prompt from building attributes.
func buildPrompt(attrs map[string]string, hasPhoto bool) string {
	var b strings.Builder

	b.WriteString(`You are an expert visual analyst specializing in Optical Character Recognition (OCR) and business intelligence. Your task is to analyze the provided image of a building and identify the establishments within it by reading its signboards.

**Building Data (for context only):**
`)
	fmt.Fprintf(&b, "- Area: %s square meters\n", attrOrUnknown(attrs, domain.AttrArea))
	fmt.Fprintf(&b, "- Location: Latitude %s, Longitude %s\n",
		attrOrUnknown(attrs, domain.AttrLatitude), attrOrUnknown(attrs, domain.AttrLongitude))
	fmt.Fprintf(&b, "- Detection Confidence: %s\n", attrOrUnknown(attrs, domain.AttrConfidence))
	if plusCode := attrs[domain.AttrPlusCode]; plusCode != "" {
		fmt.Fprintf(&b, "- Plus Code: %s\n", plusCode)
	}
	b.WriteString("- Location Context: Banjara Hills Road, Telangana, India (an upscale commercial and residential area)\n")

	b.WriteString(`
**Primary Task: Analyze the Image**

1. **Read all Signboards:** Meticulously scan the image for any text on name boards, banners, signs, or windows.
2. **Identify Establishments:** For each distinct signboard, identify the name of the shop, office, clinic, or establishment.
3. **Infer Business Type:** Based on the name and any other visual cues, determine the type of service each establishment provides (e.g., "Restaurant," "IT Firm," "Pharmacy," "Clothing Store," "Hospital").
4. **Handle Multiple Tenants:** If you see multiple distinct signboards, list each one as a separate establishment. This indicates a multi-tenant building.
5. **Provide a Summary:** Based on your findings, write a one-sentence summary of the building's primary use.
6. **Describe Visually:** Briefly describe the building's appearance, including its estimated floors, architectural style, and primary colors.
`)

	if !hasPhoto {
		b.WriteString("\nNo image is available for this request; base the analysis on the building data alone and leave establishments empty unless the data implies them.\n")
	}

	b.WriteString(`
**Response Format**
Return a JSON object with this exact structure. Do NOT include any establishments if you cannot clearly identify them from the image.

{
    "building_usage_summary": "<A short, one-sentence summary of the building's use based on the identified establishments. If none, state that it appears residential or its use is unclear.>",
    "visual_description": {
        "estimated_floors": "<e.g., '3-4 floors'>",
        "style": "<e.g., 'Modern commercial with glass facade'>",
        "color": "<e.g., 'Primarily beige and blue'>"
    },
    "establishments": [
        {
            "name": "<The name of the establishment read from the signboard>",
            "type": "<The inferred type of the establishment, e.g., 'Restaurant', 'Pharmacy', 'IT Services'>",
            "description": "<A brief, one-sentence description of the services likely offered.>"
        }
    ]
}

**CRITICAL RULES:**
- If there are NO clear signboards or text, return an empty establishments array.
- Do not guess or invent names. Only include what you can reasonably read from the image.
- Respond ONLY with the JSON object. Do not add any other commentary.
`)

	return b.String()
}

func attrOrUnknown(attrs map[string]string, key string) string {
	if v := attrs[key]; v != "" {
		return v
	}
	return "Unknown"
}
