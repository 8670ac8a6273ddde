package healthtips

import "sort"

const maxTips = 6

var categoryPriority = map[string]int{
	CategoryGeneral:    0,
	CategoryHeat:       1,
	CategoryCold:       2,
	CategoryAirQuality: 3,
	CategoryUV:         4,
}

// Relevant returns up to six tips matching the conditions, ordered by
// category priority. The sort is stable so catalog order breaks ties.
func Relevant(c Conditions) []Tip {
	var matched []Tip
	for _, tip := range catalog {
		if tip.Matches(c) {
			matched = append(matched, tip)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return categoryPriority[matched[i].Category] < categoryPriority[matched[j].Category]
	})

	if len(matched) > maxTips {
		matched = matched[:maxTips]
	}
	return matched
}

// Emergency returns tips for dangerous conditions that warrant
// immediate action. Empty under anything short of extremes.
func Emergency(c Conditions) []Tip {
	var tips []Tip

	if c.Temperature > 40 {
		tips = append(tips, Tip{
			ID:          "emergency_heat",
			Title:       "EXTREME HEAT EMERGENCY",
			Description: "Temperature is dangerously high. Stay indoors with air conditioning. Call emergency services if experiencing heat stroke symptoms: high body temperature, altered mental state, hot/dry skin.",
			Category:    CategoryHeat,
			Icon:        "🚨",
		})
	}

	if c.Temperature < -20 {
		tips = append(tips, Tip{
			ID:          "emergency_cold",
			Title:       "EXTREME COLD EMERGENCY",
			Description: "Dangerously cold conditions. Avoid outdoor exposure. Watch for hypothermia and frostbite. Seek immediate medical attention for uncontrollable shivering or numbness.",
			Category:    CategoryCold,
			Icon:        "🚨",
		})
	}

	if c.HasAirQuality && c.AQITier >= 5 {
		tips = append(tips, Tip{
			ID:          "emergency_air",
			Title:       "HAZARDOUS AIR QUALITY",
			Description: "Air quality is hazardous to health. Everyone should avoid outdoor activities. Stay indoors with windows closed and use air purifiers.",
			Category:    CategoryAirQuality,
			Icon:        "🚨",
		})
	}

	return tips
}

// ByCategory returns the catalog tips in one category
func ByCategory(category string) []Tip {
	var tips []Tip
	for _, tip := range catalog {
		if tip.Category == category {
			tips = append(tips, tip)
		}
	}
	return tips
}
