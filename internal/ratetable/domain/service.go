package domain

import (
	"context"
	"errors"
)

var (
	ErrInvalidRateOption = errors.New("invalid_rate_option")
	ErrInvalidSchedule   = errors.New("invalid_schedule")
	// ErrStaleLookup marks a response whose triggering selection the
	// caller has already replaced with a newer one.
	ErrStaleLookup = errors.New("stale_lookup")
)

type ListRatesRequest struct {
	TransactionTypeID int64
	// LookupID correlates this request with the UI selection that
	// triggered it; responses for a superseded selection are discarded.
	LookupID string
}

type ListRatesResponse struct {
	LookupID string       `json:"lookup_id,omitempty"`
	Rates    []RateOption `json:"rates"`
}

type ListSROSchedulesRequest struct {
	RateOptionID string
	ProvinceCode string
	LookupID     string
}

type ListSROSchedulesResponse struct {
	LookupID  string        `json:"lookup_id,omitempty"`
	Schedules []SROSchedule `json:"schedules"`
}

type ListSROItemsRequest struct {
	ScheduleID string
	LookupID   string
}

type ListSROItemsResponse struct {
	LookupID string    `json:"lookup_id,omitempty"`
	Items    []SROItem `json:"items"`
}

type Service interface {
	TransactionTypes(ctx context.Context) ([]TransactionType, error)
	RatesFor(ctx context.Context, req ListRatesRequest) (ListRatesResponse, error)
	SROSchedules(ctx context.Context, req ListSROSchedulesRequest) (ListSROSchedulesResponse, error)
	SROItems(ctx context.Context, req ListSROItemsRequest) (ListSROItemsResponse, error)
}
