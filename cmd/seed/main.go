package main

import (
	"context"
	"log"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"greenmarket/internal/auth"
	"greenmarket/internal/config"
	"greenmarket/internal/db"
	"greenmarket/internal/model"
	"greenmarket/internal/repository"
)

const (
	adminEmail    = "admin@umn.edu"
	adminPassword = "ChangeMe123!"
)

type seedItem struct {
	Title         string
	Description   string
	Price         string
	Category      model.Category
	Condition     model.Condition
	Location      string
	Tags          []string
	ContactMethod model.ContactMethod
	Featured      bool
	Images        []string
}

var seedItems = []seedItem{
	{
		Title:         "Mini fridge, perfect for dorms",
		Description:   "3.2 cubic feet, keeps drinks cold, moving out and cannot take it along.",
		Price:         "0",
		Category:      model.CategoryElectronics,
		Condition:     model.ConditionGood,
		Location:      "Centennial Hall",
		Tags:          []string{"dorm", "appliance"},
		ContactMethod: model.ContactEmail,
		Featured:      true,
		Images: []string{
			"https://images.example.edu/seed/fridge-front.jpg",
			"https://images.example.edu/seed/fridge-open.jpg",
		},
	},
	{
		Title:         "Calculus early transcendentals, 8th edition",
		Description:   "Some highlighting in the first chapters, otherwise in solid shape.",
		Price:         "5.00",
		Category:      model.CategoryBooks,
		Condition:     model.ConditionFair,
		Location:      "Math library",
		Tags:          []string{"textbook", "math"},
		ContactMethod: model.ContactBoth,
		Images: []string{
			"https://images.example.edu/seed/calc-cover.jpg",
		},
	},
	{
		Title:         "IKEA desk lamp",
		Description:   "Works fine, bulb included. Pick up near the west bank campus.",
		Price:         "0",
		Category:      model.CategoryFurniture,
		Condition:     model.ConditionLikeNew,
		Location:      "West Bank",
		Tags:          []string{"lamp", "desk"},
		ContactMethod: model.ContactEmail,
	},
}

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.User{}, &model.Item{}, &model.ItemImage{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	ctx := context.Background()
	userRepo := repository.NewUserRepository(gormDB)
	itemRepo := repository.NewItemRepository(gormDB)

	admin, err := ensureAdmin(ctx, userRepo)
	if err != nil {
		log.Fatalf("Failed to seed admin user: %v", err)
	}
	log.Printf("Admin user ready: %s (id=%d)", admin.Email, admin.ID)

	created := 0
	for _, seed := range seedItems {
		price, err := decimal.NewFromString(seed.Price)
		if err != nil {
			log.Printf("Skipping %q, invalid price %q", seed.Title, seed.Price)
			continue
		}

		contactMethod := seed.ContactMethod
		if contactMethod == "" {
			contactMethod = model.ContactEmail
		}
		item := &model.Item{
			Title:         seed.Title,
			Description:   seed.Description,
			Price:         price,
			Category:      seed.Category,
			Condition:     seed.Condition,
			IsAvailable:   true,
			IsFeatured:    seed.Featured,
			Tags:          seed.Tags,
			Location:      seed.Location,
			ContactMethod: contactMethod,
			UserID:        admin.ID,
		}
		if err := itemRepo.CreateWithImages(ctx, item, seed.Images); err != nil {
			log.Fatalf("Failed to seed item %q: %v", seed.Title, err)
		}
		created++
	}

	log.Printf("Seed complete: %d items created", created)
}

// ensureAdmin creates the admin account on first run and reuses it afterwards,
// keeping the script idempotent on email.
func ensureAdmin(ctx context.Context, users repository.UserRepository) (*model.User, error) {
	existing, err := users.FindByEmail(ctx, adminEmail)
	if err == nil {
		return existing, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	hashed, err := auth.HashPassword(adminPassword)
	if err != nil {
		return nil, err
	}

	admin := &model.User{
		FirstName:    "Market",
		LastName:     "Admin",
		Email:        adminEmail,
		PasswordHash: hashed,
		Role:         model.RoleAdmin,
		IsActive:     true,
	}
	if err := users.Create(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}
