package catalog

import (
	"time"

	"github.com/dmitrijs2005/storefront/internal/client/models"
)

func money(m models.Money) *models.Money { return &m }

// SeedProducts is the demo catalog.
func SeedProducts(now time.Time) []models.Product {
	at := now.UTC()
	return []models.Product{
		{
			ID:            "1",
			Name:          "Wireless Bluetooth Headphones",
			Description:   "Premium quality wireless headphones with noise cancellation and 30-hour battery life.",
			Price:         19999,
			OriginalPrice: money(24999),
			ImageURL:      "https://images.unsplash.com/photo-1505740420928-5e560c06d30e?w=500&h=500&fit=crop",
			Category:      "Electronics",
			Stock:         25,
			Rating:        4.8,
			ReviewCount:   124,
			IsSale:        true,
			CreatedAt:     at,
		},
		{
			ID:          "2",
			Name:        "Smart Fitness Watch",
			Description: "Advanced fitness tracking with heart rate monitor, GPS, and waterproof design.",
			Price:       29999,
			ImageURL:    "https://images.unsplash.com/photo-1523275335684-37898b6baf30?w=500&h=500&fit=crop",
			Category:    "Electronics",
			Stock:       15,
			Rating:      4.6,
			ReviewCount: 89,
			IsNew:       true,
			CreatedAt:   at,
		},
		{
			ID:            "3",
			Name:          "Organic Cotton T-Shirt",
			Description:   "Comfortable and sustainable organic cotton t-shirt available in multiple colors.",
			Price:         2999,
			OriginalPrice: money(3999),
			ImageURL:      "https://images.unsplash.com/photo-1521572163474-6864f9cf17ab?w=500&h=500&fit=crop",
			Category:      "Clothing",
			Stock:         50,
			Rating:        4.4,
			ReviewCount:   67,
			IsSale:        true,
			CreatedAt:     at,
		},
		{
			ID:          "4",
			Name:        "Professional Camera Lens",
			Description: "85mm f/1.4 portrait lens with exceptional image quality and beautiful bokeh.",
			Price:       59999,
			ImageURL:    "https://images.unsplash.com/photo-1606983340126-99ab4feaa64a?w=500&h=500&fit=crop",
			Category:    "Photography",
			Stock:       8,
			Rating:      4.9,
			ReviewCount: 45,
			IsNew:       true,
			CreatedAt:   at,
		},
		{
			ID:            "5",
			Name:          "Ergonomic Office Chair",
			Description:   "Premium ergonomic office chair with lumbar support and adjustable height.",
			Price:         39999,
			OriginalPrice: money(49999),
			ImageURL:      "https://images.unsplash.com/photo-1586023492125-27b2c045efd7?w=500&h=500&fit=crop",
			Category:      "Furniture",
			Stock:         12,
			Rating:        4.7,
			ReviewCount:   156,
			IsSale:        true,
			CreatedAt:     at,
		},
		{
			ID:          "6",
			Name:        "Stainless Steel Water Bottle",
			Description: "Insulated stainless steel water bottle that keeps drinks cold for 24 hours.",
			Price:       3499,
			ImageURL:    "https://images.unsplash.com/photo-1602143407151-7111542de6e8?w=500&h=500&fit=crop",
			Category:    "Sports",
			Stock:       30,
			Rating:      4.5,
			ReviewCount: 78,
			CreatedAt:   at,
		},
	}
}
