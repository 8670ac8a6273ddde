// Package healthtips selects weather-appropriate health advice to show
// alongside the current conditions.
package healthtips

// Conditions is the snapshot a tip is matched against
type Conditions struct {
	Temperature   float64
	UVIndex       float64
	AQITier       int
	HasAirQuality bool
	HeatWave      bool
	ColdWave      bool
}

// Condition is one trigger for a tip. A tip applies when any of its
// conditions holds.
type Condition func(c Conditions) bool

// Always triggers unconditionally
func Always() Condition {
	return func(Conditions) bool { return true }
}

// TempAbove triggers when the temperature exceeds the threshold
func TempAbove(threshold float64) Condition {
	return func(c Conditions) bool { return c.Temperature > threshold }
}

// TempBelow triggers when the temperature is under the threshold
func TempBelow(threshold float64) Condition {
	return func(c Conditions) bool { return c.Temperature < threshold }
}

// UVAbove triggers when the UV index exceeds the threshold
func UVAbove(threshold float64) Condition {
	return func(c Conditions) bool { return c.UVIndex > threshold }
}

// AQITierAtLeast triggers when an air quality reading exists at or
// above the given 1..5 tier
func AQITierAtLeast(tier int) Condition {
	return func(c Conditions) bool { return c.HasAirQuality && c.AQITier >= tier }
}

// DuringHeatWave triggers while a heat wave is in effect
func DuringHeatWave() Condition {
	return func(c Conditions) bool { return c.HeatWave }
}

// DuringColdWave triggers while a cold wave is in effect
func DuringColdWave() Condition {
	return func(c Conditions) bool { return c.ColdWave }
}

// Tip is one piece of health advice
type Tip struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Icon        string `json:"icon"`

	conditions []Condition
}

// Matches reports whether any of the tip's conditions holds
func (t Tip) Matches(c Conditions) bool {
	for _, cond := range t.conditions {
		if cond(c) {
			return true
		}
	}
	return false
}

const (
	CategoryGeneral    = "general"
	CategoryHeat       = "heat"
	CategoryCold       = "cold"
	CategoryAirQuality = "air_quality"
	CategoryUV         = "uv"
)

var catalog = []Tip{
	{
		ID:          "heat_1",
		Title:       "Stay Hydrated",
		Description: "Drink plenty of water throughout the day, even if you don't feel thirsty. Avoid alcohol and caffeine as they can lead to dehydration.",
		Category:    CategoryHeat,
		Icon:        "💧",
		conditions:  []Condition{TempAbove(30), DuringHeatWave()},
	},
	{
		ID:          "heat_2",
		Title:       "Dress Appropriately",
		Description: "Wear light-colored, loose-fitting clothing made of breathable fabrics like cotton. Use a wide-brimmed hat and sunglasses.",
		Category:    CategoryHeat,
		Icon:        "👕",
		conditions:  []Condition{TempAbove(28), DuringHeatWave()},
	},
	{
		ID:          "heat_3",
		Title:       "Seek Air Conditioning",
		Description: "Stay in air-conditioned spaces during the hottest parts of the day. If you don't have AC, visit public places like malls or libraries.",
		Category:    CategoryHeat,
		Icon:        "❄️",
		conditions:  []Condition{TempAbove(35), DuringHeatWave()},
	},
	{
		ID:          "heat_4",
		Title:       "Limit Outdoor Activities",
		Description: "Avoid strenuous outdoor activities during peak heat hours (10 AM - 4 PM). If you must be outside, take frequent breaks in shade.",
		Category:    CategoryHeat,
		Icon:        "🏃",
		conditions:  []Condition{TempAbove(32), DuringHeatWave()},
	},
	{
		ID:          "cold_1",
		Title:       "Layer Your Clothing",
		Description: "Dress in multiple layers to trap warm air. Wear moisture-wicking base layers and insulating middle layers.",
		Category:    CategoryCold,
		Icon:        "🧥",
		conditions:  []Condition{TempBelow(5), DuringColdWave()},
	},
	{
		ID:          "cold_2",
		Title:       "Protect Extremities",
		Description: "Wear warm gloves, hat, and thick socks to prevent frostbite. Keep hands and feet dry.",
		Category:    CategoryCold,
		Icon:        "🧤",
		conditions:  []Condition{TempBelow(0), DuringColdWave()},
	},
	{
		ID:          "cold_3",
		Title:       "Stay Warm and Dry",
		Description: "Keep your home adequately heated. Avoid getting wet in cold weather and change out of wet clothes immediately.",
		Category:    CategoryCold,
		Icon:        "🏠",
		conditions:  []Condition{TempBelow(10), DuringColdWave()},
	},
	{
		ID:          "cold_4",
		Title:       "Watch for Hypothermia Signs",
		Description: "Be aware of symptoms like uncontrollable shivering, confusion, and drowsiness. Seek immediate medical attention if these occur.",
		Category:    CategoryCold,
		Icon:        "🚨",
		conditions:  []Condition{TempBelow(-5), DuringColdWave()},
	},
	{
		ID:          "air_1",
		Title:       "Stay Indoors",
		Description: "Keep windows and doors closed when air quality is poor. Use air purifiers if available.",
		Category:    CategoryAirQuality,
		Icon:        "🏠",
		conditions:  []Condition{AQITierAtLeast(4)},
	},
	{
		ID:          "air_2",
		Title:       "Wear a Mask",
		Description: "Use N95 or KN95 masks when going outside during poor air quality days.",
		Category:    CategoryAirQuality,
		Icon:        "😷",
		conditions:  []Condition{AQITierAtLeast(5)},
	},
	{
		ID:          "air_3",
		Title:       "Limit Outdoor Exercise",
		Description: "Avoid strenuous outdoor activities when air quality is poor. Exercise indoors instead.",
		Category:    CategoryAirQuality,
		Icon:        "💪",
		conditions:  []Condition{AQITierAtLeast(4)},
	},
	{
		ID:          "air_4",
		Title:       "Use Air Purifiers",
		Description: "Run air purifiers in your home, especially in bedrooms. Keep HEPA filters clean and replace regularly.",
		Category:    CategoryAirQuality,
		Icon:        "🌪️",
		conditions:  []Condition{AQITierAtLeast(3)},
	},
	{
		ID:          "uv_1",
		Title:       "Apply Sunscreen",
		Description: "Use broad-spectrum sunscreen with SPF 30 or higher. Reapply every 2 hours and after swimming or sweating.",
		Category:    CategoryUV,
		Icon:        "🧴",
		conditions:  []Condition{UVAbove(6)},
	},
	{
		ID:          "uv_2",
		Title:       "Seek Shade",
		Description: "Stay in shade between 10 AM and 4 PM when UV rays are strongest. Use umbrellas, trees, or shelters.",
		Category:    CategoryUV,
		Icon:        "🌳",
		conditions:  []Condition{UVAbove(8)},
	},
	{
		ID:          "uv_3",
		Title:       "Wear Protective Clothing",
		Description: "Cover up with long-sleeved shirts, long pants, and wide-brimmed hats. Choose tightly woven fabrics.",
		Category:    CategoryUV,
		Icon:        "👒",
		conditions:  []Condition{UVAbove(7)},
	},
	{
		ID:          "uv_4",
		Title:       "Protect Your Eyes",
		Description: "Wear sunglasses that block 99-100% of UV-A and UV-B rays. Look for labels that specify UV protection.",
		Category:    CategoryUV,
		Icon:        "🕶️",
		conditions:  []Condition{UVAbove(5)},
	},
	{
		ID:          "general_1",
		Title:       "Check on Vulnerable People",
		Description: "Regularly check on elderly family members, neighbors, and people with chronic health conditions during extreme weather.",
		Category:    CategoryGeneral,
		Icon:        "👥",
		conditions:  []Condition{TempAbove(35), TempBelow(0), AQITierAtLeast(5)},
	},
	{
		ID:          "general_2",
		Title:       "Know Emergency Signs",
		Description: "Learn to recognize signs of heat exhaustion, hypothermia, and respiratory distress. Call emergency services if needed.",
		Category:    CategoryGeneral,
		Icon:        "🚑",
		conditions:  []Condition{TempAbove(35), TempBelow(-5), AQITierAtLeast(5)},
	},
	{
		ID:          "general_3",
		Title:       "Stay Informed",
		Description: "Monitor weather forecasts and air quality reports. Sign up for emergency alerts from local authorities.",
		Category:    CategoryGeneral,
		Icon:        "📱",
		conditions:  []Condition{Always()},
	},
	{
		ID:          "general_4",
		Title:       "Maintain Good Nutrition",
		Description: "Eat light, nutritious meals during hot weather. Include fruits and vegetables with high water content.",
		Category:    CategoryGeneral,
		Icon:        "🥗",
		conditions:  []Condition{TempAbove(25)},
	},
}
