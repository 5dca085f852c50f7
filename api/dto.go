/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/config.go: The JSON config schema types reused here
*/
package api

import (
	"github.com/keystone/comp-engine/comp"
	"github.com/keystone/comp-engine/factory"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// RunRequest triggers a calculation run.
type RunRequest struct {
	Quarter string `json:"quarter,omitempty"` // "Q3-2025", quarter close
	Month   string `json:"month,omitempty"`   // "2025-07", month close
}

// RunSummaryDTO is the API view of a run.
type RunSummaryDTO struct {
	ID              string       `json:"id"`
	Kind            string       `json:"kind"`
	Period          string       `json:"period"`
	Status          string       `json:"status"`
	Error           string       `json:"error,omitempty"`
	OrdersProcessed int          `json:"orders_processed"`
	EntriesWritten  int          `json:"entries_written"`
	TotalCommission string       `json:"total_commission"`
	TotalSpiffs     string       `json:"total_spiffs"`
	TotalBonus      string       `json:"total_bonus"`
	Skips           SkipsDTO     `json:"skips"`
	Anomalies       []AnomalyDTO `json:"anomalies"`
	StartedAt       string       `json:"started_at"`
	CompletedAt     string       `json:"completed_at,omitempty"`
}

type SkipsDTO struct {
	House        int `json:"house"`
	Ecommerce    int `json:"ecommerce"`
	Retail       int `json:"retail"`
	InactiveRep  int `json:"inactive_rep"`
	ZeroQuantity int `json:"zero_quantity"`
}

type AnomalyDTO struct {
	OrderID    string `json:"order_id"`
	OrderNum   string `json:"order_number"`
	CustomerID string `json:"customer_id"`
	SalesCode  string `json:"sales_code"`
	Reason     string `json:"reason"`
}

// BonusEntryDTO is one computed bonus row.
type BonusEntryDTO struct {
	ID         string `json:"id"`
	Quarter    string `json:"quarter"`
	RepID      string `json:"rep_id"`
	BucketCode string `json:"bucket_code"`
	SubGoalKey string `json:"sub_goal_key,omitempty"`
	Goal       string `json:"goal"`
	Actual     string `json:"actual"`
	Attainment string `json:"attainment"`
	Weight     string `json:"weight"`
	Payout     string `json:"payout"`
}

// CommissionEntryDTO is one computed commission row.
type CommissionEntryDTO struct {
	ID          string `json:"id"`
	Month       string `json:"month"`
	RepID       string `json:"rep_id"`
	OrderNumber string `json:"order_number"`
	CustomerID  string `json:"customer_id"`
	Segment     string `json:"segment"`
	Status      string `json:"status"`
	Base        string `json:"base"`
	Rate        string `json:"rate"`
	RateSource  string `json:"rate_source"`
	Commission  string `json:"commission"`
}

// SpiffEntryDTO is one computed spiff row.
type SpiffEntryDTO struct {
	ID          string `json:"id"`
	Month       string `json:"month"`
	RepID       string `json:"rep_id"`
	OrderNumber string `json:"order_number"`
	SpiffID     string `json:"spiff_id"`
	ProductKey  string `json:"product_key"`
	Quantity    string `json:"quantity"`
	Earned      string `json:"earned"`
}

// SpiffDTO is a spiff definition in responses.
type SpiffDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ProductKey string `json:"product_key"`
	Type       string `json:"type"`
	Value      string `json:"value"`
	StartDate  string `json:"start_date,omitempty"`
	EndDate    string `json:"end_date,omitempty"`
	Active     bool   `json:"active"`
}

// SaveBonusConfigRequest wraps the factory JSON schema.
type SaveBonusConfigRequest = factory.BonusConfigJSON

// SaveRateConfigRequest wraps the factory JSON schema.
type SaveRateConfigRequest = factory.RateConfigJSON

// CreateSpiffRequest wraps the factory JSON schema.
type CreateSpiffRequest = factory.SpiffJSON

// =============================================================================
// CONVERTERS
// =============================================================================

func toRunSummaryDTO(run comp.RunSummary) RunSummaryDTO {
	dto := RunSummaryDTO{
		ID:              string(run.ID),
		Kind:            string(run.Kind),
		Period:          run.Period,
		Status:          string(run.Status),
		Error:           run.Error,
		OrdersProcessed: run.OrdersProcessed,
		EntriesWritten:  run.EntriesWritten,
		TotalCommission: run.TotalCommission.Value.String(),
		TotalSpiffs:     run.TotalSpiffs.Value.String(),
		TotalBonus:      run.TotalBonus.Value.String(),
		Skips: SkipsDTO{
			House:        run.Skips.House,
			Ecommerce:    run.Skips.Ecommerce,
			Retail:       run.Skips.Retail,
			InactiveRep:  run.Skips.InactiveRep,
			ZeroQuantity: run.Skips.ZeroQuantity,
		},
		Anomalies: []AnomalyDTO{},
		StartedAt: run.StartedAt.String(),
	}
	if !run.CompletedAt.IsZero() {
		dto.CompletedAt = run.CompletedAt.String()
	}
	for _, a := range run.Anomalies {
		dto.Anomalies = append(dto.Anomalies, AnomalyDTO{
			OrderID:    string(a.OrderID),
			OrderNum:   a.OrderNum,
			CustomerID: string(a.CustomerID),
			SalesCode:  a.SalesCode,
			Reason:     a.Reason,
		})
	}
	return dto
}

func toBonusEntryDTOs(entries []comp.ComputedBonusEntry) []BonusEntryDTO {
	dtos := make([]BonusEntryDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, BonusEntryDTO{
			ID:         e.ID,
			Quarter:    e.Quarter,
			RepID:      string(e.RepID),
			BucketCode: e.BucketCode,
			SubGoalKey: e.SubGoalKey,
			Goal:       e.Goal.Value.String(),
			Actual:     e.Actual.Value.String(),
			Attainment: e.Attainment.String(),
			Weight:     e.Weight.String(),
			Payout:     e.Payout.Value.String(),
		})
	}
	return dtos
}

func toCommissionEntryDTOs(entries []comp.ComputedCommissionEntry) []CommissionEntryDTO {
	dtos := make([]CommissionEntryDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, CommissionEntryDTO{
			ID:          e.ID,
			Month:       e.Month,
			RepID:       string(e.RepID),
			OrderNumber: e.OrderNumber,
			CustomerID:  string(e.CustomerID),
			Segment:     string(e.Segment),
			Status:      string(e.Status),
			Base:        e.Base.Value.String(),
			Rate:        e.Rate.String(),
			RateSource:  string(e.RateSource),
			Commission:  e.Commission.Value.String(),
		})
	}
	return dtos
}

func toSpiffEntryDTOs(entries []comp.ComputedSpiffEntry) []SpiffEntryDTO {
	dtos := make([]SpiffEntryDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, SpiffEntryDTO{
			ID:          e.ID,
			Month:       e.Month,
			RepID:       string(e.RepID),
			OrderNumber: e.OrderNumber,
			SpiffID:     e.SpiffID,
			ProductKey:  e.ProductKey,
			Quantity:    e.Quantity.String(),
			Earned:      e.Earned.Value.String(),
		})
	}
	return dtos
}

func toSpiffDTO(s comp.Spiff) SpiffDTO {
	dto := SpiffDTO{
		ID:         s.ID,
		Name:       s.Name,
		ProductKey: s.ProductKey,
		Type:       string(s.Type),
		Value:      s.Value.String(),
		Active:     s.Active,
	}
	if !s.StartDate.IsZero() {
		dto.StartDate = s.StartDate.String()
	}
	if !s.EndDate.IsZero() {
		dto.EndDate = s.EndDate.String()
	}
	return dto
}
