package apiv1

import (
	"time"

	"github.com/shopspring/decimal"

	"meal-subscriptions/internal/domain"
	"meal-subscriptions/internal/domain/model"
	"meal-subscriptions/internal/usecase"
)

// ScheduleRequest carries the customer's calendar and meal choices.
// meal_selections maps weekday names to meal ids; default_meal_id covers
// plans without a per-day choice.
type ScheduleRequest struct {
	StartDate        string            `json:"start_date" validate:"required,datetime=2006-01-02"`
	SelectedWeekdays []string          `json:"selected_weekdays" validate:"required,min=1,max=7,unique,dive,weekday"`
	MealSelections   map[string]string `json:"meal_selections" validate:"omitempty,dive,keys,weekday,endkeys,required"`
	DefaultMealID    string            `json:"default_meal_id,omitempty"`
}

type CreateSubscriptionRequest struct {
	RestaurantID string `json:"restaurant_id" validate:"required"`
	PlanID       string `json:"plan_id" validate:"required"`
	ScheduleRequest
}

type SubscriptionStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending active completed cancelled"`
}

type ItemStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending preparing delivered cancelled"`
}

type BulkItemStatusRequest struct {
	ItemIDs []string `json:"item_ids" validate:"required,min=1,max=100,dive,required"`
	Status  string   `json:"status" validate:"required,oneof=pending preparing delivered cancelled"`
}

type DeliveryPriceRequest struct {
	DeliveryPrice *decimal.Decimal `json:"delivery_price" validate:"required"`
}

// toInput converts a validated request. Weekday names have already been checked.
func (r ScheduleRequest) toInput() (usecase.ScheduleInput, error) {
	ve := domain.NewValidationError()

	start, err := time.Parse(time.DateOnly, r.StartDate)
	if err != nil {
		ve.Add("start_date", "must be a date formatted YYYY-MM-DD")
	}
	days, err := model.ParseWeekdaySet(r.SelectedWeekdays)
	if err != nil {
		ve.Add("selected_weekdays", err.Error())
	}

	sel := model.MealSelection{ByWeekday: make(map[model.Weekday]string, len(r.MealSelections)), Default: r.DefaultMealID}
	for name, mealID := range r.MealSelections {
		d, err := model.ParseWeekday(name)
		if err != nil {
			ve.Add("meal_selections", err.Error())
			continue
		}
		sel.ByWeekday[d] = mealID
	}
	if len(sel.ByWeekday) == 0 && sel.Default == "" {
		ve.Add("meal_selections", "is required unless default_meal_id is set")
	}

	if err := ve.OrNil(); err != nil {
		return usecase.ScheduleInput{}, err
	}
	return usecase.ScheduleInput{StartDate: start, Weekdays: days, Meals: sel}, nil
}
