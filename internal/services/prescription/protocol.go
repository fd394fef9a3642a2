package prescription

import (
	"strings"

	"github.com/magabrotheeeer/leafcare-backend/internal/models"
)

// protocol описывает базовый план лечения конкретной болезни.
type protocol struct {
	Priority           string
	Duration           string
	Products           []models.ProductRecommendation
	Steps              []models.TreatmentStep
	PreventionTips     []string
	MonitoringSchedule []string
	WarningSigns       []string
	SuccessIndicators  []string
}

// treatmentProtocols содержит планы лечения по нормализованному названию
// болезни. Неизвестные болезни получают план поддержания здоровья.
var treatmentProtocols = map[string]protocol{
	"bacterial_blight": {
		Priority: "urgent",
		Duration: "2-3 weeks",
		Products: []models.ProductRecommendation{
			{
				Name:              "Copper Hydroxide Fungicide",
				Type:              "bactericide",
				ActiveIngredient:  "Copper Hydroxide 77%",
				Dosage:            "2-3 grams per liter of water",
				ApplicationMethod: "Foliar spray",
				Frequency:         "Every 7-10 days",
				Duration:          "3-4 applications",
				SafetyPrecautions: []string{
					"Wear protective clothing and gloves",
					"Avoid spraying during windy conditions",
					"Do not spray during flowering period",
				},
				EstimatedCost: "$15-25",
			},
			{
				Name:              "Streptomycin Sulfate",
				Type:              "antibiotic",
				ActiveIngredient:  "Streptomycin Sulfate 21.2%",
				Dosage:            "200 ppm (0.2g per liter)",
				ApplicationMethod: "Foliar spray",
				Frequency:         "Every 5-7 days",
				Duration:          "2-3 applications",
				SafetyPrecautions: []string{
					"Use only as directed",
					"Rotate with other bactericides",
					"Follow pre-harvest interval",
				},
				EstimatedCost: "$20-30",
			},
		},
		Steps: []models.TreatmentStep{
			{
				StepNumber:        1,
				Title:             "Immediate Isolation",
				Description:       "Remove and destroy all infected plant parts. Isolate affected plants to prevent spread.",
				Timing:            "Immediately",
				ProductsNeeded:    []string{"Pruning shears", "Disinfectant"},
				EstimatedDuration: "30-60 minutes",
			},
			{
				StepNumber:        2,
				Title:             "First Treatment Application",
				Description:       "Apply copper-based bactericide to all plant surfaces, focusing on affected areas.",
				Timing:            "Day 1",
				ProductsNeeded:    []string{"Copper Hydroxide Fungicide"},
				EstimatedDuration: "15-30 minutes",
			},
			{
				StepNumber:        3,
				Title:             "Follow-up Treatment",
				Description:       "Apply second treatment with streptomycin sulfate for enhanced bacterial control.",
				Timing:            "Day 7",
				ProductsNeeded:    []string{"Streptomycin Sulfate"},
				EstimatedDuration: "15-30 minutes",
			},
			{
				StepNumber:        4,
				Title:             "Monitoring and Maintenance",
				Description:       "Continue weekly applications and monitor for improvement. Adjust treatment as needed.",
				Timing:            "Days 14, 21",
				ProductsNeeded:    []string{"Copper Hydroxide Fungicide"},
				EstimatedDuration: "15-30 minutes per application",
			},
		},
		PreventionTips: []string{
			"Ensure proper plant spacing for air circulation",
			"Avoid overhead watering",
			"Remove plant debris regularly",
			"Disinfect tools between plants",
			"Apply preventive copper sprays during humid conditions",
		},
		MonitoringSchedule: []string{
			"Daily visual inspection for first week",
			"Weekly monitoring for new symptoms",
			"Check for spread to nearby plants",
			"Monitor weather conditions (humidity, rain)",
		},
		WarningSigns: []string{
			"Rapid spread to new leaves or plants",
			"Yellowing and wilting of entire branches",
			"Black streaks on stems",
			"Foul odor from infected areas",
		},
		SuccessIndicators: []string{
			"No new lesions appearing",
			"Existing lesions stop expanding",
			"New growth appears healthy",
			"Overall plant vigor improves",
		},
	},
	"fungal_leaf_spot": {
		Priority: "moderate",
		Duration: "2-4 weeks",
		Products: []models.ProductRecommendation{
			{
				Name:              "Mancozeb Fungicide",
				Type:              "fungicide",
				ActiveIngredient:  "Mancozeb 75%",
				Dosage:            "2 grams per liter of water",
				ApplicationMethod: "Foliar spray",
				Frequency:         "Every 10-14 days",
				Duration:          "3-4 applications",
				SafetyPrecautions: []string{
					"Wear mask and gloves during application",
					"Avoid drift to water sources",
					"Do not apply before rain",
				},
				EstimatedCost: "$12-18",
			},
			{
				Name:              "Neem Oil",
				Type:              "organic",
				ActiveIngredient:  "Azadirachtin 0.03%",
				Dosage:            "5-10ml per liter of water",
				ApplicationMethod: "Foliar spray",
				Frequency:         "Every 7-10 days",
				Duration:          "4-6 applications",
				SafetyPrecautions: []string{
					"Apply in early morning or evening",
					"Test on small area first",
					"Avoid application during flowering",
				},
				EstimatedCost: "$8-15",
			},
		},
		Steps: []models.TreatmentStep{
			{
				StepNumber:        1,
				Title:             "Sanitation",
				Description:       "Remove affected leaves and improve air circulation around plants.",
				Timing:            "Immediately",
				ProductsNeeded:    []string{"Pruning shears"},
				EstimatedDuration: "20-40 minutes",
			},
			{
				StepNumber:        2,
				Title:             "Initial Fungicide Treatment",
				Description:       "Apply mancozeb fungicide to all plant surfaces for broad-spectrum protection.",
				Timing:            "Day 1",
				ProductsNeeded:    []string{"Mancozeb Fungicide"},
				EstimatedDuration: "15-25 minutes",
			},
			{
				StepNumber:        3,
				Title:             "Organic Follow-up",
				Description:       "Apply neem oil treatment for continued protection and plant health.",
				Timing:            "Day 10",
				ProductsNeeded:    []string{"Neem Oil"},
				EstimatedDuration: "15-25 minutes",
			},
		},
		PreventionTips: []string{
			"Water at soil level, not on leaves",
			"Ensure good air circulation",
			"Apply mulch to prevent soil splash",
			"Rotate crops annually",
		},
		MonitoringSchedule: []string{
			"Weekly inspection of leaves",
			"Monitor humidity levels",
			"Check for new spot development",
		},
		WarningSigns: []string{
			"Spots increasing in size rapidly",
			"Yellowing around spots",
			"Premature leaf drop",
		},
		SuccessIndicators: []string{
			"No new spots developing",
			"Existing spots remain stable",
			"New growth is clean",
		},
	},
	"healthy": {
		Priority: "low",
		Duration: "Ongoing maintenance",
		Products: []models.ProductRecommendation{
			{
				Name:              "Balanced Fertilizer (10-10-10)",
				Type:              "fertilizer",
				ActiveIngredient:  "NPK 10-10-10",
				Dosage:            "1 tablespoon per gallon of water",
				ApplicationMethod: "Soil application",
				Frequency:         "Monthly",
				Duration:          "Growing season",
				SafetyPrecautions: []string{
					"Follow package instructions",
					"Water after application",
				},
				EstimatedCost: "$10-15",
			},
		},
		Steps: []models.TreatmentStep{
			{
				StepNumber:        1,
				Title:             "Maintain Plant Health",
				Description:       "Continue regular care routine to keep plants healthy.",
				Timing:            "Ongoing",
				ProductsNeeded:    []string{"Balanced Fertilizer"},
				EstimatedDuration: "10-15 minutes monthly",
			},
		},
		PreventionTips: []string{
			"Maintain consistent watering schedule",
			"Provide adequate sunlight",
			"Regular fertilization",
			"Monitor for early signs of problems",
		},
		MonitoringSchedule: []string{
			"Weekly visual inspection",
			"Monthly detailed check",
		},
		WarningSigns: []string{
			"Any unusual discoloration",
			"Wilting",
			"Pest activity",
		},
		SuccessIndicators: []string{
			"Vigorous growth",
			"Good color",
			"No disease symptoms",
		},
	},
}

// protocolFor возвращает план лечения по названию болезни. Название
// нормализуется к нижнему регистру с подчёркиваниями вместо пробелов.
func protocolFor(diseaseName string) protocol {
	key := strings.ReplaceAll(strings.ToLower(diseaseName), " ", "_")
	if p, ok := treatmentProtocols[key]; ok {
		return p
	}
	return treatmentProtocols["healthy"]
}

// adjustForSeverity подстраивает план под степень поражения: тяжёлые случаи
// получают срочный приоритет и учащённые обработки, лёгкие — наоборот.
// Исходный план не изменяется.
func adjustForSeverity(p protocol, severity string) protocol {
	adjusted := p
	adjusted.Products = make([]models.ProductRecommendation, len(p.Products))
	copy(adjusted.Products, p.Products)

	switch strings.ToLower(severity) {
	case "severe", "critical":
		adjusted.Priority = "urgent"
		for i := range adjusted.Products {
			switch adjusted.Products[i].Frequency {
			case "Every 10-14 days":
				adjusted.Products[i].Frequency = "Every 7-10 days"
			case "Every 7-10 days":
				adjusted.Products[i].Frequency = "Every 5-7 days"
			}
		}
	case "mild", "low":
		adjusted.Priority = "low"
		for i := range adjusted.Products {
			switch adjusted.Products[i].Frequency {
			case "Every 5-7 days":
				adjusted.Products[i].Frequency = "Every 7-10 days"
			case "Every 7-10 days":
				adjusted.Products[i].Frequency = "Every 10-14 days"
			}
		}
	}
	return adjusted
}
