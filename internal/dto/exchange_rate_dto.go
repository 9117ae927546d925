package dto

import (
	"time"

	"github.com/emretit/paftamobile-sub007/internal/core/domain"
	"github.com/emretit/paftamobile-sub007/internal/utils"
	"github.com/shopspring/decimal"
)

// DateLayout is the calendar date format used on the API.
const DateLayout = "2006-01-02"

// RateQuoteResponse defines the API representation of one currency's rates.
type RateQuoteResponse struct {
	CurrencyCode    string           `json:"currencyCode"`
	CurrencyName    string           `json:"currencyName,omitempty"`
	Unit            int              `json:"unit"`
	ForexBuying     decimal.Decimal  `json:"forexBuying"`
	ForexSelling    decimal.Decimal  `json:"forexSelling"`
	BanknoteBuying  decimal.Decimal  `json:"banknoteBuying"`
	BanknoteSelling decimal.Decimal  `json:"banknoteSelling"`
	CrossRate       *decimal.Decimal `json:"crossRate,omitempty"`
}

// RateSetResponse is the body of the latest, by-date and refresh endpoints.
type RateSetResponse struct {
	EffectiveDate string              `json:"effectiveDate"`
	Quotes        []RateQuoteResponse `json:"quotes"`
}

// ToRateSetResponse converts a domain.RateSet to RateSetResponse DTO
func ToRateSetResponse(set *domain.RateSet) RateSetResponse {
	quotes := make([]RateQuoteResponse, len(set.Quotes))
	for i, q := range set.Quotes {
		quotes[i] = RateQuoteResponse{
			CurrencyCode:    q.CurrencyCode,
			CurrencyName:    q.CurrencyName,
			Unit:            q.Unit,
			ForexBuying:     q.ForexBuying,
			ForexSelling:    q.ForexSelling,
			BanknoteBuying:  q.BanknoteBuying,
			BanknoteSelling: q.BanknoteSelling,
			CrossRate:       q.CrossRate,
		}
	}
	return RateSetResponse{
		EffectiveDate: set.EffectiveDate.Format(DateLayout),
		Quotes:        quotes,
	}
}

// ListDatesParams holds the query parameters of the dates endpoint.
type ListDatesParams struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// DatesResponse lists cached effective dates, newest first.
type DatesResponse struct {
	Dates []string `json:"dates"`
}

// ToDatesResponse formats dates with DateLayout.
func ToDatesResponse(dates []time.Time) DatesResponse {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.Format(DateLayout)
	}
	return DatesResponse{Dates: out}
}

// ConvertRequest holds the query parameters of the conversion endpoint.
type ConvertRequest struct {
	Amount string `form:"amount" binding:"required"`
	From   string `form:"from" binding:"required,len=3,alpha"`
	To     string `form:"to" binding:"required,len=3,alpha"`
}

// ConversionResponse defines the result of a currency conversion.
type ConversionResponse struct {
	From          string `json:"from"`
	To            string `json:"to"`
	Amount        string `json:"amount"`
	Result        string `json:"result"`
	Rate          string `json:"rate"`
	EffectiveDate string `json:"effectiveDate"`
}

// ToConversionResponse converts a domain.Conversion, rounding the result to precision places.
func ToConversionResponse(c *domain.Conversion, precision int32) ConversionResponse {
	return ConversionResponse{
		From:          c.From,
		To:            c.To,
		Amount:        c.Amount.String(),
		Result:        utils.FormatWithPrecision(c.Result, precision),
		Rate:          utils.FormatRate(c.Rate, rateDisplayPrecision),
		EffectiveDate: c.EffectiveDate.Format(DateLayout),
	}
}

// rateDisplayPrecision is the precision of the cross rate shown on conversions.
const rateDisplayPrecision = 6

// ListIngestionLogsParams holds the query parameters for paging the audit trail.
type ListIngestionLogsParams struct {
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=100"`
	NextToken string `form:"nextToken"`
}

// IngestionLogResponse defines the API representation of an audit entry.
type IngestionLogResponse struct {
	ID            string    `json:"id"`
	Status        string    `json:"status"`
	Trigger       string    `json:"trigger"`
	OccurredAt    time.Time `json:"occurredAt"`
	Message       string    `json:"message"`
	Count         int       `json:"count"`
	EffectiveDate *string   `json:"effectiveDate,omitempty"`
	DurationMS    int64     `json:"durationMs"`
}

// ListIngestionLogsResponse is one page of the audit trail.
type ListIngestionLogsResponse struct {
	Logs      []IngestionLogResponse `json:"logs"`
	NextToken *string                `json:"nextToken,omitempty"`
}

// ToIngestionLogResponse converts a domain.IngestionLogEntry to its DTO.
func ToIngestionLogResponse(e domain.IngestionLogEntry) IngestionLogResponse {
	resp := IngestionLogResponse{
		ID:         e.ID,
		Status:     string(e.Status),
		Trigger:    string(e.Trigger),
		OccurredAt: e.OccurredAt,
		Message:    e.Message,
		Count:      e.Count,
		DurationMS: e.DurationMS,
	}
	if e.EffectiveDate != nil {
		d := e.EffectiveDate.Format(DateLayout)
		resp.EffectiveDate = &d
	}
	return resp
}

// ScheduleResponse defines the API representation of the recurring trigger.
type ScheduleResponse struct {
	Name      string     `json:"name"`
	Interval  string     `json:"interval"`
	Enabled   bool       `json:"enabled"`
	NextRunAt time.Time  `json:"nextRunAt"`
	LastRunAt *time.Time `json:"lastRunAt,omitempty"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// ToScheduleResponse converts a domain.Schedule to its DTO.
func ToScheduleResponse(s *domain.Schedule) ScheduleResponse {
	return ScheduleResponse{
		Name:      s.Name,
		Interval:  s.Interval.String(),
		Enabled:   s.Enabled,
		NextRunAt: s.NextRunAt,
		LastRunAt: s.LastRunAt,
		UpdatedAt: s.UpdatedAt,
	}
}
