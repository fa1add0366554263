package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"meal-subscriptions/internal/config"
	"meal-subscriptions/internal/domain/model"
	"meal-subscriptions/internal/domain/ports/repository"
	pg "meal-subscriptions/internal/infra/db/postgres"
	"meal-subscriptions/internal/infra/logging"
	"meal-subscriptions/internal/usecase"
)

const demoRestaurant = "demo-kitchen"

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	// ---- Config ----
	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.Log, true)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Connect Postgres
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()
	if err := pg.Migrate(ctx, pool, logger); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	planUC := usecase.NewPlanUseCase(pg.NewPostgresPlanRepo(pool), pg.NewTxManager(pool), logger)
	mealRepo := pg.NewPostgresMealRepo(pool)

	// If plans already exist, do nothing
	plans, err := planUC.List(ctx, demoRestaurant)
	if err != nil {
		log.Fatalf("list plans: %v", err)
	}
	if len(plans) > 0 {
		fmt.Printf("%d plans already present. No changes.\n", len(plans))
		for _, p := range plans {
			fmt.Printf("  - %s (%s, meals=%d, delivery=%s, commission=%s%%)\n", p.Name, p.Cadence, p.MealCount, p.DeliveryPrice.StringFixed(2), p.CommissionPercent)
		}
		return
	}

	seed := []struct {
		ID      string
		Name    string
		Cadence model.PlanCadence
		Meals   int
	}{
		{"demo-weekly-5", "Weekdays", model.CadenceWeekly, 5},
		{"demo-weekly-3", "Three a week", model.CadenceWeekly, 3},
		{"demo-monthly-20", "Monthly 20", model.CadenceMonthly, 20},
	}
	delivery := decimal.RequireFromString("4.50")
	commission := decimal.RequireFromString("10")

	planIDs := make([]string, 0, len(seed))
	for _, s := range seed {
		p, err := model.NewSubscriptionPlan(s.ID, demoRestaurant, s.Name, s.Cadence, s.Meals, delivery, commission)
		if err != nil {
			log.Fatalf("plan %q: %v", s.Name, err)
		}
		if err := planUC.Save(ctx, p); err != nil {
			log.Fatalf("save plan %q: %v", s.Name, err)
		}
		planIDs = append(planIDs, p.ID)
		fmt.Printf("seeded plan: %s (id=%s, meals=%d)\n", p.Name, p.ID, p.MealCount)
	}

	menu := []struct {
		ID, Name, Price string
	}{
		{"demo-meal-bowl", "Grain bowl", "12.00"},
		{"demo-meal-wrap", "Chicken wrap", "9.50"},
		{"demo-meal-curry", "Lentil curry", "11.25"},
	}
	for _, m := range menu {
		meal := &model.Meal{
			ID:           m.ID,
			RestaurantID: demoRestaurant,
			Name:         m.Name,
			Price:        decimal.RequireFromString(m.Price),
			Active:       true,
			PlanIDs:      planIDs,
		}
		if err := mealRepo.Save(ctx, repository.NoTX, meal); err != nil {
			log.Fatalf("save meal %q: %v", m.Name, err)
		}
		fmt.Printf("seeded meal: %s (id=%s, price=%s)\n", meal.Name, meal.ID, meal.Price.StringFixed(2))
	}

	fmt.Println("Seeding complete.")
}
