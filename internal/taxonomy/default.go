package taxonomy

// Category keys.
const (
	CategoryMedical      = "medical"
	CategoryMentalHealth = "mental-health"
	CategoryCrisis       = "crisis"
	CategoryHousing      = "housing"
	CategoryEmployment   = "employment"
	CategoryBenefits     = "benefits"
	CategoryFamily       = "family"
)

// defaultEntries returns the built-in vocabulary. Categories come first so
// Keys(KindCategory) follows the wizard's menu order.
func defaultEntries() []Entry {
	return []Entry{
		{Key: CategoryMentalHealth, Kind: KindCategory, Label: "Mental health",
			Synonyms: []string{"mental health", "counseling", "therapy", "behavioral health", "psychology", "emotional"}},
		{Key: CategoryMedical, Kind: KindCategory, Label: "Medical care",
			Synonyms: []string{"health care", "healthcare", "clinic", "primary care", "hospital", "physical"}},
		{Key: CategoryCrisis, Kind: KindCategory, Label: "Crisis support",
			Synonyms: []string{"crisis line", "hotline", "emergency", "24/7", "suicide prevention"}},
		{Key: CategoryHousing, Kind: KindCategory, Label: "Housing",
			Synonyms: []string{"homeless", "homelessness", "shelter", "rent", "eviction"}},
		{Key: CategoryEmployment, Kind: KindCategory, Label: "Employment",
			Synonyms: []string{"job", "jobs", "career", "vocational", "unemployment"}},
		{Key: CategoryBenefits, Kind: KindCategory, Label: "Benefits",
			Synonyms: []string{"disability claim", "compensation", "gi bill", "pension"}},
		{Key: CategoryFamily, Kind: KindCategory, Label: "Family & caregivers",
			Synonyms: []string{"caregiver", "spouse", "children", "marriage", "relationship"}},

		{Key: "ptsd", Kind: KindSymptom, Label: "PTSD", Category: CategoryMentalHealth,
			Synonyms: []string{"post-traumatic stress", "post traumatic stress", "trauma", "flashbacks", "nightmares", "hypervigilance", "combat stress"}},
		{Key: "depression", Kind: KindSymptom, Label: "Depression", Category: CategoryMentalHealth,
			Synonyms: []string{"depressed", "hopeless", "sadness", "low mood", "no motivation"}},
		{Key: "anxiety", Kind: KindSymptom, Label: "Anxiety", Category: CategoryMentalHealth,
			Synonyms: []string{"anxious", "panic", "panic attacks", "worry", "nervous", "stress"}},
		{Key: "substance-use", Kind: KindSymptom, Label: "Substance use", Category: CategoryMentalHealth,
			Synonyms: []string{"addiction", "alcohol", "drinking", "drugs", "opioids", "sobriety", "recovery"}},
		{Key: "sleep", Kind: KindSymptom, Label: "Sleep problems", Category: CategoryMedical,
			Synonyms: []string{"insomnia", "can't sleep", "sleep apnea", "fatigue"}},
		{Key: "tbi", Kind: KindSymptom, Label: "Traumatic brain injury", Category: CategoryMedical,
			Synonyms: []string{"traumatic brain injury", "brain injury", "concussion", "blast injury", "memory problems"}},
		{Key: "chronic-pain", Kind: KindSymptom, Label: "Chronic pain", Category: CategoryMedical,
			Synonyms: []string{"pain", "back pain", "joint pain", "pain management", "injury"}},
		{Key: "moral-injury", Kind: KindSymptom, Label: "Moral injury", Category: CategoryMentalHealth,
			Synonyms: []string{"guilt", "shame", "betrayal", "spiritual"}},
		{Key: "grief", Kind: KindSymptom, Label: "Grief & loss", Category: CategoryMentalHealth,
			Synonyms: []string{"loss", "bereavement", "survivor", "gold star", "mourning"}},
		{Key: "anger", Kind: KindSymptom, Label: "Anger", Category: CategoryMentalHealth,
			Synonyms: []string{"irritability", "rage", "anger management", "outbursts"}},
		{Key: "isolation", Kind: KindSymptom, Label: "Isolation", Category: CategoryMentalHealth,
			Synonyms: []string{"lonely", "loneliness", "withdrawn", "peer support", "reintegration"}},
		{Key: "suicidal-thoughts", Kind: KindSymptom, Label: "Suicidal thoughts", Category: CategoryCrisis,
			Synonyms: []string{"suicidal", "suicide", "self-harm", "crisis line", "hotline"}},
		{Key: "homelessness", Kind: KindSymptom, Label: "Housing instability", Category: CategoryHousing,
			Synonyms: []string{"homeless", "shelter", "eviction", "housing"}},
	}
}
