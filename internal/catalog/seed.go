package catalog

import "github.com/Skotchmaster/rad_plants/internal/models"

const (
	plant1 = "/assets/plant-1.jpg"
	plant2 = "/assets/plant-2.jpg"
	plant3 = "/assets/plant-3.jpg"
	plant4 = "/assets/plant-4.jpg"
	plant5 = "/assets/plant-5.jpg"
	plant6 = "/assets/plant-6.jpg"
)

func Seed() []models.Product {
	return []models.Product{
		{
			ID:          "1",
			Name:        "Monstera Deliciosa",
			Price:       150,
			Image:       plant1,
			Images:      []string{plant1, plant2, plant3, plant4},
			Category:    models.CategoryIndoor,
			Description: "The iconic Swiss cheese plant with its distinctive split leaves. Perfect for adding a tropical touch to any room.",
			InStock:     true,
			Stock:       5,
		},
		{
			ID:          "2",
			Name:        "Fiddle Leaf Fig",
			Price:       120,
			Image:       plant2,
			Images:      []string{plant2, plant1, plant5, plant6},
			Category:    models.CategoryIndoor,
			Description: "A stunning statement plant with large, violin-shaped leaves that add elegance to any space.",
			InStock:     false,
			Stock:       0,
		},
		{
			ID:          "3",
			Name:        "Succulent Collection",
			Price:       50,
			Image:       plant3,
			Images:      []string{plant3, plant5, plant6, plant4},
			Category:    models.CategoryOutdoor,
			Description: "A beautiful arrangement of various succulents in a rustic wooden planter.",
			InStock:     true,
			Stock:       12,
		},
		{
			ID:          "4",
			Name:        "Golden Pothos",
			Price:       35,
			Image:       plant4,
			Images:      []string{plant4, plant1, plant2, plant6},
			Category:    models.CategoryBedroom,
			Description: "An easy-care trailing plant with heart-shaped leaves. Perfect for beginners.",
			InStock:     true,
			Stock:       20,
		},
		{
			ID:          "5",
			Name:        "Snake Plant",
			Price:       65,
			Image:       plant5,
			Images:      []string{plant5, plant6, plant1, plant3},
			Category:    models.CategoryBedroom,
			Description: "A hardy plant known for its striking upright leaves and air-purifying qualities.",
			InStock:     true,
			Stock:       8,
		},
		{
			ID:          "6",
			Name:        "Peace Lily",
			Price:       45,
			Image:       plant6,
			Images:      []string{plant6, plant4, plant2, plant5},
			Category:    models.CategoryIndoor,
			Description: "An elegant flowering plant with glossy leaves and beautiful white blooms.",
			InStock:     true,
			Stock:       15,
		},
	}
}
