package ratesapi

import "time"

// CurrencyInfo identifies a currency an exchange rate refers to.
type CurrencyInfo struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

// ExchangeRate is a conversion rate between two currencies.
type ExchangeRate struct {
	ID               string        `json:"id"`
	Rate             float64       `json:"rate"`
	CurrencySourceID string        `json:"currencySourceId"`
	CurrencyTargetID string        `json:"currencyTargetId"`
	CurrencySource   *CurrencyInfo `json:"currencySource,omitempty"`
	CurrencyTarget   *CurrencyInfo `json:"currencyTarget,omitempty"`
	IsActive         bool          `json:"isActive"`
	CreatedAt        time.Time     `json:"createdAt"`
	CreatedBy        string        `json:"createdBy,omitempty"`
	ModifiedAt       *time.Time    `json:"modifiedAt,omitempty"`
	ModifiedBy       string        `json:"modifiedBy,omitempty"`
}

// CreateExchangeRateRequest creates a new exchange rate.
type CreateExchangeRateRequest struct {
	Rate             float64 `json:"rate"              validate:"required,gt=0"`
	CurrencySourceID string  `json:"currencySourceId"  validate:"required"`
	CurrencyTargetID string  `json:"currencyTargetId"  validate:"required,nefield=CurrencySourceID"`
	CreatedBy        string  `json:"createdBy,omitempty"`
}

// UpdateExchangeRateRequest updates an existing exchange rate. Zero-valued
// fields are left untouched by the API.
type UpdateExchangeRateRequest struct {
	Rate             *float64 `json:"rate,omitempty"             validate:"omitempty,gt=0"`
	CurrencySourceID string   `json:"currencySourceId,omitempty"`
	CurrencyTargetID string   `json:"currencyTargetId,omitempty"`
	ModifiedBy       string   `json:"modifiedBy,omitempty"`
}

// Parameter is a configurable reference value, optionally nested under a
// parent parameter.
type Parameter struct {
	ID              string     `json:"id"`
	Code            string     `json:"code"`
	Description     string     `json:"description"`
	LongDescription string     `json:"longDescription,omitempty"`
	ParentID        string     `json:"parentId,omitempty"`
	DisplayOrder    int        `json:"displayOrder"`
	NumericValue    *float64   `json:"numericValue,omitempty"`
	TextValue       string     `json:"textValue,omitempty"`
	IsActive        bool       `json:"isActive"`
	CreatedAt       time.Time  `json:"createdAt"`
	CreatedBy       string     `json:"createdBy,omitempty"`
	ModifiedAt      *time.Time `json:"modifiedAt,omitempty"`
	ModifiedBy      string     `json:"modifiedBy,omitempty"`
}

// CreateParameterRequest creates a new parameter.
type CreateParameterRequest struct {
	Code            string   `json:"code"        validate:"required"`
	Description     string   `json:"description" validate:"required"`
	LongDescription string   `json:"longDescription,omitempty"`
	ParentID        string   `json:"parentId,omitempty"`
	DisplayOrder    int      `json:"displayOrder" validate:"gte=0"`
	NumericValue    *float64 `json:"numericValue,omitempty"`
	TextValue       string   `json:"textValue,omitempty"`
	CreatedBy       string   `json:"createdBy,omitempty"`
}

// UpdateParameterRequest updates an existing parameter. The code and parent
// are immutable.
type UpdateParameterRequest struct {
	Description     string   `json:"description,omitempty"`
	LongDescription string   `json:"longDescription,omitempty"`
	DisplayOrder    *int     `json:"displayOrder,omitempty" validate:"omitempty,gte=0"`
	NumericValue    *float64 `json:"numericValue,omitempty"`
	TextValue       string   `json:"textValue,omitempty"`
	ModifiedBy      string   `json:"modifiedBy,omitempty"`
}
