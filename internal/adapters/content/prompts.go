package content

import (
	"fmt"

	"google.golang.org/genai"

	"github.com/andrescamacho/neonrails-go/internal/domain/economy"
)

const stationPrompt = "Generate a unique, futuristic cyberpunk metro station. It should have a name, " +
	"a short atmospheric description (max 20 words), and a type (RESIDENTIAL, COMMERCIAL, INDUSTRIAL, or CYBERNETIC)."

func eventPrompt(reputation int) string {
	return fmt.Sprintf("Generate a random short event for a futuristic metro system. Current reputation is %d.\n"+
		"Return JSON with: title, description (max 15 words), impactType (positive, negative, neutral), "+
		"and creditChange (integer between -200 and 200).", reputation)
}

func chatPrompt(stationName, message string) string {
	return fmt.Sprintf("You are a tired, cynical commuter in a cyberpunk metro station named %q. "+
		"Reply to this message: %q. Keep it short (max 25 words) and slang-heavy.", stationName, message)
}

var stationSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"name":        {Type: genai.TypeString},
		"description": {Type: genai.TypeString},
		"type":        {Type: genai.TypeString, Format: "enum", Enum: stationTypeEnum()},
	},
	Required: []string{"name", "description", "type"},
}

func stationTypeEnum() []string {
	types := economy.AllStationTypes()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}

var eventSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title":        {Type: genai.TypeString},
		"description":  {Type: genai.TypeString},
		"impactType":   {Type: genai.TypeString},
		"creditChange": {Type: genai.TypeInteger},
	},
	Required: []string{"title", "description", "impactType", "creditChange"},
}
