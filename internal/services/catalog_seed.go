package services

import (
	"time"

	"github.com/localkart/homeservices-api/internal/models"
)

type seedEntry struct {
	name        string
	category    models.ServiceType
	price       float64
	description string
	rating      float64
	reviews     int
	discount    string
	image       string
}

var defaultCatalog = []seedEntry{
	{"Women's Haircut & Styling", models.ServiceSalon, 30, "Professional haircut and styling service for women", 4.9, 15000, "20%", "/images/womens-salon-hero.png"},
	{"Men's Haircut & Beard Trim", models.ServiceSalon, 25, "Complete haircut and beard grooming for men", 4.9, 8500, "10%", "/images/womens-salon-hero.png"},
	{"Hair Coloring & Highlights", models.ServiceSalon, 50, "Professional hair coloring and highlighting services", 4.8, 12000, "15%", "/images/womens-salon-hero.png"},
	{"Facial & Skin Treatment", models.ServiceSalon, 40, "Rejuvenating facial and skin care treatments", 4.9, 10000, "", "/images/womens-salon-hero.png"},

	{"Deep Home Cleaning", models.ServiceCleaning, 80, "Comprehensive deep cleaning for your entire home", 4.8, 20000, "25%", "/images/cleaning-hero.png"},
	{"Kitchen Cleaning", models.ServiceCleaning, 35, "Thorough kitchen cleaning and sanitization", 4.7, 15000, "15%", "/images/cleaning-hero.png"},
	{"Bathroom Cleaning", models.ServiceCleaning, 30, "Complete bathroom deep cleaning service", 4.8, 18000, "", "/images/cleaning-hero.png"},
	{"Office Cleaning", models.ServiceCleaning, 100, "Professional office space cleaning", 4.9, 12000, "20%", "/images/cleaning-hero.png"},

	{"AC Installation & Repair", models.ServiceElectrician, 60, "Professional AC installation and repair services", 4.9, 25000, "30%", "/images/electrician-hero.png"},
	{"Electrical Wiring", models.ServiceElectrician, 45, "Safe and reliable electrical wiring services", 4.8, 18000, "20%", "/images/electrician-hero.png"},
	{"Fan Installation", models.ServiceElectrician, 25, "Ceiling and wall fan installation", 4.7, 15000, "", "/images/electrician-hero.png"},
	{"Light Fixture Installation", models.ServiceElectrician, 30, "Installation of lights and fixtures", 4.8, 12000, "15%", "/images/electrician-hero.png"},

	{"Pipe Repair & Replacement", models.ServicePlumber, 50, "Expert pipe repair and replacement services", 4.8, 22000, "25%", "/images/plumber-hero.png"},
	{"Tap & Faucet Repair", models.ServicePlumber, 20, "Quick tap and faucet repair service", 4.7, 18000, "10%", "/images/plumber-hero.png"},
	{"Toilet Installation", models.ServicePlumber, 70, "Professional toilet installation service", 4.9, 15000, "", "/images/plumber-hero.png"},
	{"Drainage Cleaning", models.ServicePlumber, 40, "Complete drainage system cleaning", 4.8, 20000, "20%", "/images/plumber-hero.png"},

	{"Premium Car Wash", models.ServiceCarWash, 35, "Complete exterior and interior car wash", 4.9, 30000, "30%", "/images/car-wash-hero.png"},
	{"Car Detailing", models.ServiceCarWash, 80, "Professional car detailing service", 4.8, 15000, "25%", "/images/car-wash-hero.png"},
	{"Engine Cleaning", models.ServiceCarWash, 45, "Thorough engine bay cleaning", 4.7, 12000, "", "/images/car-wash-hero.png"},
	{"Paint Protection", models.ServiceCarWash, 100, "Ceramic coating and paint protection", 4.9, 10000, "20%", "/images/car-wash-hero.png"},

	{"Cricket Coaching", models.ServiceSports, 50, "Professional cricket coaching sessions", 4.9, 8000, "20%", "/images/sports-hero.png"},
	{"Football Training", models.ServiceSports, 45, "Expert football training and skills development", 4.8, 7000, "15%", "/images/sports-hero.png"},
	{"Badminton Court Booking", models.ServiceSports, 30, "Premium badminton court rental", 4.7, 12000, "", "/images/sports-hero.png"},
	{"Gym Membership", models.ServiceSports, 100, "Monthly gym membership with trainer", 4.9, 15000, "25%", "/images/sports-hero.png"},

	{"Concert Tickets", models.ServiceEvents, 75, "Premium concert and live music event tickets", 4.9, 25000, "15%", "/images/events-hero.png"},
	{"Sports Event Tickets", models.ServiceEvents, 60, "Tickets for major sporting events", 4.8, 20000, "10%", "/images/events-hero.png"},
	{"Festival Passes", models.ServiceEvents, 100, "Multi-day festival passes and VIP access", 4.9, 18000, "20%", "/images/events-hero.png"},
	{"Theater Shows", models.ServiceEvents, 50, "Theater and drama show tickets", 4.7, 12000, "", "/images/events-hero.png"},
}

// DefaultCatalog returns the starter catalog stamped with now.
func DefaultCatalog(now time.Time) []models.Service {
	out := make([]models.Service, 0, len(defaultCatalog))
	for _, e := range defaultCatalog {
		svc := models.Service{
			Name:        e.name,
			Category:    e.category,
			Description: e.description,
			Price:       e.price,
			Image:       e.image,
			Rating:      e.rating,
			Reviews:     e.reviews,
			IsActive:    true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if e.discount != "" {
			d := e.discount
			svc.Discount = &d
		}
		out = append(out, svc)
	}
	return out
}
