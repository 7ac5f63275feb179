package vendorclient

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ErrSubmissionInProgress is returned when a mutation is attempted while another
// one is still awaiting its response.
var ErrSubmissionInProgress = errors.New("a submission is already in progress")

// VendorAPI is the subset of Client the Board needs.
type VendorAPI interface {
	ListVendors(ctx context.Context) ([]Vendor, error)
	CreateVendor(ctx context.Context, fields VendorFields) (*Vendor, error)
	UpdateVendor(ctx context.Context, id string, fields VendorFields) (*Vendor, error)
	DeleteVendor(ctx context.Context, id string) error
}

// NotificationKind distinguishes success from error notifications.
type NotificationKind string

const (
	NotifySuccess NotificationKind = "success"
	NotifyError   NotificationKind = "error"
)

// Notification is a transient message for the user.
type Notification struct {
	Kind    NotificationKind
	Message string
}

// BoardOptions configures a Board.
type BoardOptions struct {
	Notify func(Notification)
	// Confirm is asked before a delete; a nil Confirm approves every delete.
	Confirm func(message string) bool
}

// Board is the client-side view of the caller's vendors. It only mirrors what the
// API returns: every successful mutation is followed by a fresh list. At most one
// mutation is in flight at a time and failures are never retried.
type Board struct {
	api  VendorAPI
	opts BoardOptions

	mu         sync.Mutex
	submitting bool
	vendors    []Vendor
}

// NewBoard creates a Board backed by api.
func NewBoard(api VendorAPI, opts BoardOptions) *Board {
	if opts.Notify == nil {
		opts.Notify = func(Notification) {}
	}
	return &Board{api: api, opts: opts}
}

// Vendors returns the last fetched list.
func (b *Board) Vendors() []Vendor {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Vendor, len(b.vendors))
	copy(out, b.vendors)
	return out
}

// Submitting reports whether a mutation is awaiting its response.
func (b *Board) Submitting() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.submitting
}

// Refresh re-fetches the vendor list.
func (b *Board) Refresh(ctx context.Context) error {
	vendors, err := b.api.ListVendors(ctx)
	if err != nil {
		b.opts.Notify(Notification{Kind: NotifyError, Message: errorMessage(err, "Failed to fetch vendors.")})
		return err
	}
	if vendors == nil {
		vendors = []Vendor{}
	}
	b.mu.Lock()
	b.vendors = vendors
	b.mu.Unlock()
	return nil
}

// Save creates a vendor when id is empty and updates vendor id otherwise.
func (b *Board) Save(ctx context.Context, id string, fields VendorFields) error {
	if err := fields.Validate(); err != nil {
		var vErr *ValidationError
		if errors.As(err, &vErr) {
			b.opts.Notify(Notification{Kind: NotifyError, Message: "Please fill in: " + joinFields(vErr.Fields)})
		}
		return err
	}

	successMsg, failureMsg := "Vendor created successfully!", "Failed to create vendor."
	if id != "" {
		successMsg, failureMsg = "Vendor updated successfully!", "Failed to update vendor."
	}

	return b.submit(ctx, func() error {
		var err error
		if id == "" {
			_, err = b.api.CreateVendor(ctx, fields)
		} else {
			_, err = b.api.UpdateVendor(ctx, id, fields)
		}
		return err
	}, successMsg, failureMsg)
}

// Delete removes vendor id after confirmation. A declined confirmation is a no-op.
func (b *Board) Delete(ctx context.Context, id string) error {
	if b.opts.Confirm != nil && !b.opts.Confirm("Are you sure you want to delete this vendor?") {
		return nil
	}
	return b.submit(ctx, func() error {
		return b.api.DeleteVendor(ctx, id)
	}, "Vendor deleted successfully!", "Failed to delete vendor.")
}

func (b *Board) submit(ctx context.Context, call func() error, successMsg, failureMsg string) error {
	b.mu.Lock()
	if b.submitting {
		b.mu.Unlock()
		return ErrSubmissionInProgress
	}
	b.submitting = true
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		b.submitting = false
		b.mu.Unlock()
	}()

	if err := call(); err != nil {
		b.opts.Notify(Notification{Kind: NotifyError, Message: errorMessage(err, failureMsg)})
		return err
	}

	b.opts.Notify(Notification{Kind: NotifySuccess, Message: successMsg})
	_ = b.Refresh(ctx)
	return nil
}

// errorMessage prefers the API's own error text.
func errorMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

var fieldLabels = map[string]string{
	"name":          "Vendor name",
	"bankAccountNo": "Bank account no.",
	"bankName":      "Bank name",
	"addressLine2":  "Address line 2",
}

func joinFields(fields []string) string {
	labels := make([]string, 0, len(fields))
	for _, f := range fields {
		if label, ok := fieldLabels[f]; ok {
			labels = append(labels, label)
			continue
		}
		labels = append(labels, f)
	}
	return strings.Join(labels, ", ")
}
