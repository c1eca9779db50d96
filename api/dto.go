/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for the HTTP boundary. Core records carry decimals;
  DTOs project them to float64 for the wire, keeping the API contract
  decoupled from the internal model.

SHAPES:
  Success bodies are wrapped as {"data": ...}; every failure body is
  {"errors": [...]}. Batch results marshal themselves into one of the
  two result shapes (see warehouse.BatchResult).

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/warehouse-engine/warehouse"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// ingestRequest is the body for POST /api/supply and POST /api/sales.
type ingestRequest struct {
	Data []warehouse.Item `json:"data"`
}

// dataResponse wraps every successful response body.
type dataResponse struct {
	Data any `json:"data"`
}

// errorResponse is the standard failure body.
type errorResponse struct {
	Errors []string `json:"errors"`
}

// saleGroupDTO is one row of the profit and top-N reports.
type saleGroupDTO struct {
	SKU    string  `json:"sku"`
	Qty    float64 `json:"qty"`
	Sum    float64 `json:"sum"`
	Profit float64 `json:"profit"`
	Margin float64 `json:"margin"`
}

// lotDTO is the full-format availability row.
type lotDTO struct {
	ID    string  `json:"id"`
	SKU   string  `json:"sku"`
	When  string  `json:"when"`
	Date  string  `json:"date"`
	Qty   float64 `json:"qty"`
	Price float64 `json:"price"`
}

// availableSupplyDTO is the compact availability row.
type availableSupplyDTO struct {
	SKU  string  `json:"sku"`
	Qty  float64 `json:"qty"`
	Cost float64 `json:"cost"`
}

// flushDTO is the body of DELETE /api/flush.
type flushDTO struct {
	Success int `json:"success"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func f64(d decimal.Decimal) float64 {
	v, _ := d.Float64()
	return v
}

func toSaleGroupDTOs(groups []warehouse.SaleGroup) []saleGroupDTO {
	dtos := make([]saleGroupDTO, len(groups))
	for i, g := range groups {
		dtos[i] = saleGroupDTO{
			SKU:    g.SKU,
			Qty:    f64(g.Qty),
			Sum:    f64(g.Sum),
			Profit: f64(g.Profit),
			Margin: f64(g.Margin),
		}
	}
	return dtos
}

func toLotDTOs(lots []warehouse.SupplyLot) []lotDTO {
	dtos := make([]lotDTO, len(lots))
	for i, lot := range lots {
		dtos[i] = lotDTO{
			ID:    lot.ID,
			SKU:   lot.SKU,
			When:  lot.When,
			Date:  lot.ReceivedAt.Format(time.RFC3339),
			Qty:   f64(lot.Qty),
			Price: f64(lot.UnitCost),
		}
	}
	return dtos
}

func toAvailableSupplyDTOs(lots []warehouse.SupplyLot) []availableSupplyDTO {
	dtos := make([]availableSupplyDTO, len(lots))
	for i, lot := range lots {
		av := lot.Available()
		dtos[i] = availableSupplyDTO{
			SKU:  av.SKU,
			Qty:  f64(av.Qty),
			Cost: f64(av.Cost),
		}
	}
	return dtos
}
