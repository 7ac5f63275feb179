/**
 * @description
 * This file provides a client for the vendor Resource API. Payloads are checked for
 * the required vendor fields before any request is sent, so an incomplete vendor
 * never reaches the network.
 *
 * @dependencies
 * - github.com/go-playground/validator/v10: required-field checks on payloads.
 */
package vendorclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Vendor mirrors the vendor object returned by the API.
type Vendor struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	BankAccountNo string    `json:"bankAccountNo"`
	BankName      string    `json:"bankName"`
	AddressLine1  *string   `json:"addressLine1"`
	AddressLine2  string    `json:"addressLine2"`
	City          *string   `json:"city"`
	Country       *string   `json:"country"`
	ZipCode       *string   `json:"zipCode"`
	UserID        string    `json:"userId"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// VendorFields is the editable part of a vendor, as submitted by the form.
type VendorFields struct {
	Name          string `json:"name" validate:"required"`
	BankAccountNo string `json:"bankAccountNo" validate:"required"`
	BankName      string `json:"bankName" validate:"required"`
	AddressLine1  string `json:"addressLine1"`
	AddressLine2  string `json:"addressLine2" validate:"required"`
	City          string `json:"city"`
	Country       string `json:"country"`
	ZipCode       string `json:"zipCode"`
}

// ErrValidation is wrapped by ValidationError.
var ErrValidation = errors.New("missing required fields")

// ValidationError lists the JSON names of required fields left blank.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return ErrValidation.Error() + ": " + strings.Join(e.Fields, ", ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("vendor api returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("vendor api returned status %d: %s", e.StatusCode, e.Message)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		return strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	})
	return v
}

// Validate trims fields and reports any required field that is blank.
func (f *VendorFields) Validate() error {
	f.Name = strings.TrimSpace(f.Name)
	f.BankAccountNo = strings.TrimSpace(f.BankAccountNo)
	f.BankName = strings.TrimSpace(f.BankName)
	f.AddressLine1 = strings.TrimSpace(f.AddressLine1)
	f.AddressLine2 = strings.TrimSpace(f.AddressLine2)
	f.City = strings.TrimSpace(f.City)
	f.Country = strings.TrimSpace(f.Country)
	f.ZipCode = strings.TrimSpace(f.ZipCode)

	err := validate.Struct(f)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, fe.Field())
	}
	return &ValidationError{Fields: fields}
}

// Client provides methods to interact with the vendor API.
type Client struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
}

// NewClient creates a client that authenticates with the given session token.
func NewClient(baseURL, authToken string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		authToken:  authToken,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// ListVendors returns the caller's vendors, newest first.
func (c *Client) ListVendors(ctx context.Context) ([]Vendor, error) {
	var vendors []Vendor
	if err := c.do(ctx, http.MethodGet, "/api/vendors", nil, &vendors); err != nil {
		return nil, err
	}
	return vendors, nil
}

// CreateVendor validates fields and creates a vendor.
func (c *Client) CreateVendor(ctx context.Context, fields VendorFields) (*Vendor, error) {
	if err := fields.Validate(); err != nil {
		return nil, err
	}
	var vendor Vendor
	if err := c.do(ctx, http.MethodPost, "/api/vendors", fields, &vendor); err != nil {
		return nil, err
	}
	return &vendor, nil
}

// UpdateVendor validates fields and replaces the editable fields of a vendor.
func (c *Client) UpdateVendor(ctx context.Context, id string, fields VendorFields) (*Vendor, error) {
	if err := fields.Validate(); err != nil {
		return nil, err
	}
	var vendor Vendor
	if err := c.do(ctx, http.MethodPut, "/api/vendors/"+url.PathEscape(id), fields, &vendor); err != nil {
		return nil, err
	}
	return &vendor, nil
}

// DeleteVendor removes a vendor.
func (c *Client) DeleteVendor(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/vendors/"+url.PathEscape(id), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("level=warn component=vendorclient msg=\"vendor api call failed\" method=%s path=%s err=%v", method, path, err)
		return fmt.Errorf("failed to call vendor api: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(raw, &errBody)
		return &APIError{StatusCode: resp.StatusCode, Message: errBody.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
