package classifier

import "fmt"

// Rubric names referenced by catalog departments
const (
	RubricWater       = "water"
	RubricElectricity = "electricity"
)

type rubric struct {
	expert string
	domain string
	high   []string
	medium []string
	low    []string
}

var rubrics = map[string]rubric{
	RubricWater: {
		expert: "a water utility expert",
		domain: "water-related",
		high: []string{
			"Complete water supply disruption",
			"Water contamination issues (bad smell, color, health hazards)",
			"Sewage overflow or burst water mains",
		},
		medium: []string{
			"Low water pressure",
			"Minor leakages or intermittent supply issues",
			"Pipeline repairs or water meter problems",
		},
		low: []string{
			"General inquiries or billing questions",
			"Future connection requests or minor maintenance",
			"Information updates",
		},
	},
	RubricElectricity: {
		expert: "an electrical utility expert",
		domain: "electricity-related",
		high: []string{
			"Complete power outage affecting multiple households",
			"Live wire/electrical hazards",
			"Transformer sparking or burning",
			"Electric shock incidents",
			"Fire hazards",
			"Power fluctuations causing equipment damage",
			"Major infrastructure damage",
		},
		medium: []string{
			"Localized power outage (single household)",
			"Voltage fluctuations without damage",
			"Frequent circuit trips",
			"Meter malfunctions",
			"Street light issues",
			"Minor electrical repairs",
			"Loose connections",
		},
		low: []string{
			"Billing inquiries",
			"New connection requests",
			"General information requests",
			"Scheduled maintenance queries",
			"Future service modifications",
			"Documentation updates",
		},
	},
}

// BuildPrompt renders the classification prompt. Unknown rubric names use the
// water rubric.
func BuildPrompt(rubricName, issueType, issueDetails string) string {
	r, ok := rubrics[rubricName]
	if !ok {
		r = rubrics[RubricWater]
	}

	return fmt.Sprintf(`As %s, analyze this %s issue and classify its priority as 'high', 'medium', or 'low'.

Issue Type: %s
Details: %s

Classification Rules:
HIGH priority if:
%s
MEDIUM priority if:
%s
LOW priority if:
%s
Based on the above criteria, respond with exactly one word (high/medium/low):`,
		r.expert, r.domain, issueType, issueDetails,
		bullets(r.high), bullets(r.medium), bullets(r.low))
}

func bullets(items []string) string {
	var out string
	for _, item := range items {
		out += "- " + item + "\n"
	}
	return out
}
