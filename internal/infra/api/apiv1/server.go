package apiv1

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"meal-subscriptions/internal/domain"
	"meal-subscriptions/internal/domain/model"
	"meal-subscriptions/internal/infra/logging"
	"meal-subscriptions/internal/usecase"
)

// Server implements the /api/v1 handlers on top of the use cases.
type Server struct {
	subs  usecase.SubscriptionUseCase
	plans usecase.PlanUseCase
	stats usecase.StatsUseCase
	log   *zerolog.Logger
}

func NewServer(subs usecase.SubscriptionUseCase, plans usecase.PlanUseCase, stats usecase.StatsUseCase, logger *zerolog.Logger) *Server {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Server{subs: subs, plans: plans, stats: stats, log: logger}
}

// RegisterAPIV1 mounts every route under /api/v1 on r.
func RegisterAPIV1(r chi.Router, s *Server) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/subscriptions", func(r chi.Router) {
			r.Post("/", s.CreateSubscription)
			r.Get("/", s.ListSubscriptions)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.GetSubscription)
				r.Delete("/", s.DeleteSubscription)
				r.Patch("/status", s.UpdateSubscriptionStatus)
				r.Post("/regenerate", s.RegenerateSubscription)
				r.Get("/audit", s.AuditSubscription)
				r.Patch("/items/status", s.UpdateItemsStatus)
				r.Patch("/items/{itemID}/status", s.UpdateItemStatus)
			})
		})

		r.Route("/plans", func(r chi.Router) {
			r.Get("/", s.ListPlans)
			r.Get("/{id}", s.GetPlan)
		})
		r.Put("/restaurants/{id}/delivery-price", s.UpdateDeliveryPrice)
		r.Get("/reports/revenue", s.RevenueReport)
	})
}

// decode reads a JSON body into dst and runs its validation tags. Body errors
// are reported as field errors so clients get one 422 shape.
func decode(r *http.Request, dst interface{}) error {
	ve := domain.NewValidationError()
	if r.Body == nil || r.Body == http.NoBody {
		ve.Add("body", "request body is required")
		return ve
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var ute *json.UnmarshalTypeError
		switch {
		case errors.As(err, &ute) && ute.Field != "":
			ve.Add(ute.Field, "must be a "+ute.Type.String())
		case errors.Is(err, io.EOF):
			ve.Add("body", "request body is required")
		default:
			ve.Add("body", "invalid JSON: "+err.Error())
		}
		return ve
	}
	return validateStruct(dst)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	writeErr(w, r, s.log, err)
}

func (s *Server) CreateSubscription(w http.ResponseWriter, r *http.Request) {
	var req CreateSubscriptionRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	sched, err := req.toInput()
	if err != nil {
		s.fail(w, r, err)
		return
	}

	out, err := s.subs.Create(r.Context(), logging.UserID(r.Context()), usecase.CreateSubscriptionInput{
		RestaurantID:  req.RestaurantID,
		PlanID:        req.PlanID,
		ScheduleInput: sched,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, out)
}

func (s *Server) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := s.subs.ListByUser(r.Context(), logging.UserID(r.Context()))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if subs == nil {
		subs = []*model.Subscription{}
	}
	respondJSON(w, http.StatusOK, subs)
}

func (s *Server) GetSubscription(w http.ResponseWriter, r *http.Request) {
	out, err := s.subs.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) DeleteSubscription(w http.ResponseWriter, r *http.Request) {
	if err := s.subs.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, nil)
}

func (s *Server) UpdateSubscriptionStatus(w http.ResponseWriter, r *http.Request) {
	var req SubscriptionStatusRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	sub, err := s.subs.UpdateStatus(r.Context(), chi.URLParam(r, "id"), model.SubscriptionStatus(req.Status))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, sub)
}

func (s *Server) RegenerateSubscription(w http.ResponseWriter, r *http.Request) {
	var req ScheduleRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	sched, err := req.toInput()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out, err := s.subs.Regenerate(r.Context(), chi.URLParam(r, "id"), sched)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, out)
}

// AuditSubscription replies 200 with match=false when the stamped split drifted.
func (s *Server) AuditSubscription(w http.ResponseWriter, r *http.Request) {
	audit, err := s.subs.AuditPricing(r.Context(), chi.URLParam(r, "id"))
	if err != nil && !(audit != nil && errors.Is(err, domain.ErrPricingMismatch)) {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, audit)
}

func (s *Server) UpdateItemStatus(w http.ResponseWriter, r *http.Request) {
	var req ItemStatusRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	it, err := s.subs.UpdateItemStatus(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "itemID"), model.ItemStatus(req.Status))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, it)
}

func (s *Server) UpdateItemsStatus(w http.ResponseWriter, r *http.Request) {
	var req BulkItemStatusRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	items, err := s.subs.UpdateItemsStatus(r.Context(), chi.URLParam(r, "id"), req.ItemIDs, model.ItemStatus(req.Status))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (s *Server) ListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.plans.List(r.Context(), r.URL.Query().Get("restaurant_id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if plans == nil {
		plans = []*model.SubscriptionPlan{}
	}
	respondJSON(w, http.StatusOK, plans)
}

func (s *Server) GetPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := s.plans.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, plan)
}

func (s *Server) UpdateDeliveryPrice(w http.ResponseWriter, r *http.Request) {
	var req DeliveryPriceRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	restaurantID := chi.URLParam(r, "id")
	ids, err := s.plans.UpdateDeliveryPrice(r.Context(), restaurantID, *req.DeliveryPrice)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"restaurant_id":  restaurantID,
		"delivery_price": req.DeliveryPrice.Round(2),
		"plan_ids":       ids,
	})
}

// RevenueReport takes from/to as YYYY-MM-DD; to is exclusive.
func (s *Server) RevenueReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ve := domain.NewValidationError()
	from, err := time.Parse(time.DateOnly, q.Get("from"))
	if err != nil {
		ve.Add("from", "must be a date formatted YYYY-MM-DD")
	}
	to, err := time.Parse(time.DateOnly, q.Get("to"))
	if err != nil {
		ve.Add("to", "must be a date formatted YYYY-MM-DD")
	}
	if err := ve.OrNil(); err != nil {
		s.fail(w, r, err)
		return
	}

	report, err := s.stats.Revenue(r.Context(), q.Get("restaurant_id"), from, to)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}
