package handler

import (
	"time"

	"github.com/bandhan/matrimony-api/internal/core/domain"
)

type sessionRequest struct {
	Assertion string `json:"assertion" validate:"required"`
}

type sessionResponse struct {
	Token      string            `json:"token"`
	ExpiresAt  time.Time         `json:"expires_at"`
	Created    bool              `json:"created"`
	Account    *domain.Account   `json:"account"`
	Privileges domain.Privileges `json:"privileges"`
}

type setRoleRequest struct {
	Role string `json:"role" validate:"required,role"`
}

type setPremiumRequest struct {
	Premium *bool `json:"premium" validate:"required"`
}

type createDisclosureRequest struct {
	BiodataID  int64  `json:"biodata_id"  validate:"required,gt=0"`
	PaymentRef string `json:"payment_ref"`
}

type statusQuery struct {
	Status string `query:"status" validate:"request_status"`
}

type visibilityItem struct {
	BiodataID int64 `json:"biodata_id"`
	Visible   bool  `json:"visible"`
}

type visibilityResponse struct {
	Items []visibilityItem `json:"items"`
}

type listResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

func newList[T any](items []T) listResponse[T] {
	if items == nil {
		items = []T{}
	}
	return listResponse[T]{Items: items, Count: len(items)}
}
