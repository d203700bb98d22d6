package db

import (
	"storefront/internal/domain"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func price(v float64) *float64 { return &v }

// demoProducts is the catalog inserted into an empty products table.
var demoProducts = []domain.Product{
	{Name: "Celestial Chronograph", Description: "Luxury chronograph with Swiss automatic movement. 42mm stainless steel case, anti-reflective sapphire crystal, water resistant to 100m.", Price: 2499.99, PreviousPrice: price(2999.99), Brand: "Angel Swiss", Category: "luxury", Image: "https://images.unsplash.com/photo-1523275335684-37898b6baf30?w=500", Stock: 5, Featured: true},
	{Name: "Midnight Classic", Description: "Classic black dial with golden details. Genuine Italian leather strap and high precision Japanese quartz movement.", Price: 899.99, Brand: "Angel Collection", Category: "classic", Image: "https://images.unsplash.com/photo-1524592094714-0f0654e20314?w=500", Stock: 15, Featured: true},
	{Name: "Sport Pro X", Description: "Rugged sports watch with stopwatch, alarm and LED light. Water resistant to 200m.", Price: 349.99, PreviousPrice: price(449.99), Brand: "Angel Sport", Category: "sport", Image: "https://images.unsplash.com/photo-1542496658-e33a6d0d50f6?w=500", Stock: 25, Featured: true},
	{Name: "Vintage Rose Gold", Description: "Vintage rose gold finish with Roman numerals and a Milanese mesh strap.", Price: 599.99, Brand: "Angel Vintage", Category: "classic", Image: "https://images.unsplash.com/photo-1533139502658-0198f920d8e8?w=500", Stock: 10},
	{Name: "Digital Smartwatch Elite", Description: "Smartwatch with heart rate monitor, built-in GPS and smart notifications. Seven day battery.", Price: 799.99, PreviousPrice: price(999.99), Brand: "Angel Tech", Category: "smart", Image: "https://images.unsplash.com/photo-1579586337278-3befd40fd17a?w=500", Stock: 20, Featured: true},
	{Name: "Ocean Diver 300", Description: "Professional dive watch rated to 300m with unidirectional bezel, helium valve and Super-LumiNova.", Price: 1299.99, Brand: "Angel Marine", Category: "sport", Image: "https://images.unsplash.com/photo-1548171915-e79a380a2a4b?w=500", Stock: 8},
	{Name: "Executive Titanium", Description: "Ultralight titanium case, automatic movement with 72 hour power reserve and sapphire crystal.", Price: 1899.99, PreviousPrice: price(2199.99), Brand: "Angel Premium", Category: "luxury", Image: "https://images.unsplash.com/photo-1614164185128-e4ec99c436d7?w=500", Stock: 6},
	{Name: "Minimalist White", Description: "Scandinavian design with a pure white dial and interchangeable leather or NATO strap.", Price: 299.99, Brand: "Angel Basic", Category: "classic", Image: "https://images.unsplash.com/photo-1522312346375-d1a52e2b99b3?w=500", Stock: 30},
	{Name: "Pilot Aviation", Description: "Aviator watch with slide rule bezel and a highly legible 44mm dial.", Price: 749.99, Brand: "Angel Aviation", Category: "classic", Image: "https://images.unsplash.com/photo-1587925358603-c2eea5305bbc?w=500", Stock: 12},
	{Name: "Fitness Tracker Pro", Description: "Activity tracker with sleep and calorie tracking, 20+ sport modes and an AMOLED display.", Price: 199.99, PreviousPrice: price(249.99), Brand: "Angel Fit", Category: "smart", Image: "https://images.unsplash.com/photo-1575311373937-040b8e1fd5b6?w=500", Stock: 40},
	{Name: "Skeleton Automatic", Description: "Skeleton dial exposing the mechanical movement, matte black finish with blue accents.", Price: 1599.99, Brand: "Angel Artisan", Category: "luxury", Image: "https://images.unsplash.com/photo-1509048191080-d2984bad6ae5?w=500", Stock: 4, Featured: true},
	{Name: "Classic Leather Brown", Description: "Timeless aged brown leather strap, cream dial with golden indices.", Price: 449.99, Brand: "Angel Heritage", Category: "classic", Image: "https://images.unsplash.com/photo-1526045431048-f857369baa09?w=500", Stock: 18},
}

// SeedProducts inserts the demo catalog when the products table is empty and
// returns the number of inserted rows.
func SeedProducts(db *gorm.DB, log *logrus.Logger) (int, error) {
	var count int64
	if err := db.Model(&domain.Product{}).Count(&count).Error; err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}
	products := make([]domain.Product, len(demoProducts))
	copy(products, demoProducts)
	// Insert all rows or none
	err := db.Transaction(func(tx *gorm.DB) error {
		for i := range products {
			if products[i].Category == "" {
				products[i].Category = domain.DefaultCategory
			}
			if err := tx.Create(&products[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	log.WithField("products", len(products)).Info("Demo products seeded")
	return len(products), nil
}
