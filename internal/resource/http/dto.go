package http

import (
	"time"

	"github.com/nekogravitycat/lab-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/lab-booking-backend/internal/resource"
)

type CreateResourceRequest struct {
	Name     string `json:"name" binding:"required"`
	Capacity int    `json:"capacity" binding:"required,min=1"`
}

type UpdateResourceRequest struct {
	Name     *string `json:"name"`
	Capacity *int    `json:"capacity" binding:"omitempty,min=1"`
}

type ListResourcesRequest struct {
	request.ListParams
	Name string `form:"name"`
}

type ResourceResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Capacity  int       `json:"capacity"`
	CreatedAt time.Time `json:"created_at"`
}

func NewResourceResponse(r *resource.Resource) ResourceResponse {
	return ResourceResponse{
		ID:        r.ID,
		Name:      r.Name,
		Capacity:  r.Capacity,
		CreatedAt: r.CreatedAt,
	}
}
