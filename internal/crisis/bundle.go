package crisis

import "github.com/starford/vetbridge/internal/models"

// Message is shown whenever the crisis bundle is returned.
const Message = "It sounds like you may be going through something really difficult right now, and you don't have to face it alone. " +
	"Please reach out to the Veterans Crisis Line now: dial 988 and press 1, text 838255, or chat at VeteransCrisisLine.net. " +
	"If you are in immediate danger, call 911."

// Bundle is the static crisis response.
type Bundle struct {
	Message         string
	Severity        models.Severity
	NextSteps       []string
	Recommendations models.RecommendationSet
}

// VeteransCrisisLine is the entry that always leads the institutional track
// of a crisis response.
func VeteransCrisisLine() models.Recommendation {
	return models.Recommendation{
		ResourceID:  "veterans-crisis-line",
		Title:       "Veterans Crisis Line",
		Description: "Free, confidential support 24/7 for veterans, service members and their families.",
		Track:       models.TrackInstitutional,
		Priority:    models.PriorityHigh,
		Note:        "Dial 988 then press 1, text 838255, or chat online. Available 24/7.",
		Contact:     &models.Contact{Phone: "988 (press 1)", URL: "https://www.veteranscrisisline.net"},
		CrisisLine:  true,
		Source:      models.SourceCrisis,
	}
}

// NewBundle returns a fresh copy of the crisis bundle. Callers may modify
// the result.
func NewBundle() Bundle {
	return Bundle{
		Message:  Message,
		Severity: models.SeverityCrisis,
		NextSteps: []string{
			"Call 988 and press 1 to talk to a trained responder now.",
			"Text 838255 if speaking out loud is hard.",
			"If you or someone else is in immediate danger, call 911.",
			"Stay with someone you trust until you are connected to help.",
		},
		Recommendations: models.RecommendationSet{
			Institutional: []models.Recommendation{
				VeteransCrisisLine(),
				{
					ResourceID: "emergency-911",
					Title:      "Emergency Services (911)",
					Track:      models.TrackInstitutional,
					Priority:   models.PriorityHigh,
					Note:       "Call 911 if anyone is in immediate danger.",
					Contact:    &models.Contact{Phone: "911"},
					CrisisLine: true,
					Source:     models.SourceCrisis,
				},
			},
			Grassroots: []models.Recommendation{
				{
					ResourceID: "crisis-text-line",
					Title:      "Crisis Text Line",
					Track:      models.TrackGrassroots,
					Priority:   models.PriorityHigh,
					Note:       "Text HOME to 741741 to reach a volunteer crisis counselor 24/7.",
					Contact:    &models.Contact{Phone: "741741", URL: "https://www.crisistextline.org"},
					CrisisLine: true,
					Source:     models.SourceCrisis,
				},
				{
					ResourceID: "nami-helpline",
					Title:      "NAMI HelpLine",
					Track:      models.TrackGrassroots,
					Priority:   models.PriorityMedium,
					Note:       "Peer support and referrals, 1-800-950-6264.",
					Contact:    &models.Contact{Phone: "1-800-950-6264", URL: "https://www.nami.org/help"},
					Source:     models.SourceCrisis,
				},
			},
			Regional: []models.Recommendation{
				{
					ResourceID: "nearest-emergency-department",
					Title:      "Nearest Emergency Department",
					Track:      models.TrackRegional,
					Priority:   models.PriorityHigh,
					Note:       "Go to the closest emergency room or VA medical center emergency department.",
					Source:     models.SourceCrisis,
				},
				{
					ResourceID: "local-988-center",
					Title:      "Local 988 Crisis Center",
					Track:      models.TrackRegional,
					Priority:   models.PriorityMedium,
					Note:       "Calls to 988 are routed to the crisis center closest to you.",
					Contact:    &models.Contact{Phone: "988"},
					CrisisLine: true,
					Source:     models.SourceCrisis,
				},
			},
		},
	}
}
