package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/strengthlab/overload/internal/config"
	"github.com/strengthlab/overload/internal/domain"
	"github.com/strengthlab/overload/internal/repository"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Seeds a starter set of workout templates for a user. Useful for demo
// accounts and local development.
func main() {
	userID := flag.String("user", "", "user id to own the seeded templates")
	flag.Parse()
	if *userID == "" {
		log.Fatal("missing -user flag")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoDB.URI))
	if err != nil {
		log.Fatalf("Failed to connect to Mongo: %v", err)
	}
	defer client.Disconnect(ctx)

	db := client.Database(cfg.MongoDB.Database)
	tplRepo := repository.NewMongoTemplateRepository(db)

	templates := []domain.Template{
		{
			Name:        "Upper Body",
			Description: "Pressing and pulling for the whole upper body",
			Exercises: []domain.ExercisePrescription{
				{Name: "Barbell Bench Press", TargetSets: 4, TargetRepMin: 6, TargetRepMax: 10},
				{Name: "Overhead Press", TargetSets: 3, TargetRepMin: 6, TargetRepMax: 10},
				{Name: "Lat Pulldown", TargetSets: 3, TargetRepMin: 8, TargetRepMax: 12},
				{Name: "Barbell Row", TargetSets: 3, TargetRepMin: 8, TargetRepMax: 12},
				{Name: "Barbell Curl", TargetSets: 3, TargetRepMin: 10, TargetRepMax: 15},
				{Name: "Tricep Pushdown", TargetSets: 3, TargetRepMin: 10, TargetRepMax: 15},
			},
		},
		{
			Name:        "Lower Body",
			Description: "Squat and hinge focused leg day",
			Exercises: []domain.ExercisePrescription{
				{Name: "Barbell Squat", TargetSets: 4, TargetRepMin: 5, TargetRepMax: 8},
				{Name: "Deadlift", TargetSets: 3, TargetRepMin: 5, TargetRepMax: 8},
				{Name: "Leg Press", TargetSets: 3, TargetRepMin: 10, TargetRepMax: 15},
				{Name: "Walking Lunge", TargetSets: 3, TargetRepMin: 10, TargetRepMax: 12},
				{Name: "Lying Leg Curl", TargetSets: 3, TargetRepMin: 10, TargetRepMax: 15},
				{Name: "Calf Raise", TargetSets: 4, TargetRepMin: 12, TargetRepMax: 20},
			},
		},
		{
			Name:        "Full Body - Beginner",
			Description: "Simple full-body session for new lifters",
			Exercises: []domain.ExercisePrescription{
				{Name: "Goblet Squat", TargetSets: 3, TargetRepMin: 8, TargetRepMax: 12},
				{Name: "Push Up", TargetSets: 3, TargetRepMin: 8, TargetRepMax: 15},
				{Name: "Seated Cable Row", TargetSets: 3, TargetRepMin: 10, TargetRepMax: 12},
				{Name: "Dumbbell Shoulder Press", TargetSets: 3, TargetRepMin: 8, TargetRepMax: 12},
				{Name: "Plank", TargetSets: 3, TargetRepMin: 1, TargetRepMax: 3},
			},
		},
	}

	for i := range templates {
		templates[i].UserID = *userID
		if err := templates[i].Validate(); err != nil {
			log.Fatalf("Template %s invalid: %v", templates[i].Name, err)
		}
		if err := tplRepo.Create(ctx, &templates[i]); err != nil {
			log.Fatalf("Failed to seed template %s: %v", templates[i].Name, err)
		}
		log.Printf("✓ Seeded template %s (%s)", templates[i].Name, templates[i].ID)
	}
}
