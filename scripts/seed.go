package main

import (
	"log"

	"github.com/Mtumish1/Nairobi-Gift-Shop/internal/config"
	"github.com/Mtumish1/Nairobi-Gift-Shop/internal/database"
	"github.com/Mtumish1/Nairobi-Gift-Shop/internal/models"
)

func intPtr(v int) *int { return &v }

// Seeds the demo catalog. Safe to run once against an empty database.
func main() {
	cfg := config.Load()

	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	categories := []models.Category{
		{Name: "Flowers", Description: "Beautiful bouquets for any occasion"},
		{Name: "Chocolates", Description: "Delicious handcrafted chocolates"},
		{Name: "Gift Hampers", Description: "Curated gift baskets for everyone"},
		{Name: "Personalized", Description: "Custom gifts with your own text, colors and photos"},
		{Name: "Corporate", Description: "Professional gifts for colleagues and clients"},
	}
	if err := db.Create(&categories).Error; err != nil {
		log.Fatal("Failed to seed categories:", err)
	}

	products := []models.Product{
		{Name: "Rose Bouquet", Description: "A dozen red roses", Price: 2500, CategoryID: categories[0].ID, StockQuantity: intPtr(20)},
		{Name: "Box of Truffles", Description: "Assorted chocolate truffles", Price: 1200, CategoryID: categories[1].ID, StockQuantity: intPtr(50)},
		{Name: "Spa Day Hamper", Description: "A relaxing collection of spa items", Price: 5500, CategoryID: categories[2].ID, StockQuantity: intPtr(10)},
		{Name: "Engraved Photo Frame", Description: "Wooden frame with custom engraving", Price: 1800, CategoryID: categories[3].ID},
		{Name: "Executive Gift Set", Description: "Pen, notebook and card holder", Price: 4200, CategoryID: categories[4].ID, StockQuantity: intPtr(15)},
	}
	if err := db.Create(&products).Error; err != nil {
		log.Fatal("Failed to seed products:", err)
	}

	log.Println("Database seeded successfully")
}
