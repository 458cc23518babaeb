package http

import (
	"time"

	"github.com/nekogravitycat/lab-booking-backend/internal/schedule"
)

type CreateRuleRequest struct {
	ResourceID string `json:"resource_id" binding:"required,uuid"`
	DayOfWeek  int    `json:"day_of_week" binding:"required,min=1,max=7"`
	StartHour  int    `json:"start_hour" binding:"min=0,max=23"`
	EndHour    int    `json:"end_hour" binding:"required,min=1,max=24"`
	Label      string `json:"label" binding:"required"`
}

type CreateBlackoutRequest struct {
	ResourceID string    `json:"resource_id" binding:"required,uuid"`
	Start      time.Time `json:"start" binding:"required"`
	End        time.Time `json:"end" binding:"required"`
	Reason     string    `json:"reason" binding:"required"`
}

type RuleResponse struct {
	ID         string    `json:"id"`
	ResourceID string    `json:"resource_id"`
	DayOfWeek  int       `json:"day_of_week"`
	StartHour  int       `json:"start_hour"`
	EndHour    int       `json:"end_hour"`
	Label      string    `json:"label"`
	CreatedBy  string    `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
}

func NewRuleResponse(r *schedule.RecurringRule) RuleResponse {
	return RuleResponse{
		ID:         r.ID,
		ResourceID: r.ResourceID,
		DayOfWeek:  r.DayOfWeek,
		StartHour:  r.StartHour,
		EndHour:    r.EndHour,
		Label:      r.Label,
		CreatedBy:  r.CreatedBy,
		CreatedAt:  r.CreatedAt,
	}
}

type BlackoutResponse struct {
	ID         string    `json:"id"`
	ResourceID string    `json:"resource_id"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Reason     string    `json:"reason"`
	CreatedBy  string    `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
}

func NewBlackoutResponse(b *schedule.Blackout) BlackoutResponse {
	return BlackoutResponse{
		ID:         b.ID,
		ResourceID: b.ResourceID,
		Start:      b.Start,
		End:        b.End,
		Reason:     b.Reason,
		CreatedBy:  b.CreatedBy,
		CreatedAt:  b.CreatedAt,
	}
}
