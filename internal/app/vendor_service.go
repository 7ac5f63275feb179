/**
 * @description
 * This file contains the business logic for vendor records, implemented as a
 * `VendorService`. Every operation is scoped to the user of the calling session:
 * reads only return that user's vendors and writes pass through Authorize first.
 *
 * @notes
 * - Persistence errors are wrapped in ErrPersistence; their detail is logged here
 *   and never reaches API callers.
 * - Change events are best effort: a failed publish is logged and the request
 *   still succeeds.
 */
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sumamakhan761/vendor-management/internal/domain"
	"github.com/sumamakhan761/vendor-management/internal/store"
	"github.com/sumamakhan761/vendor-management/pkg/rabbitmq"
)

const publishTimeout = 5 * time.Second

// VendorInput is the payload for creating a vendor.
type VendorInput struct {
	Name          string  `json:"name" validate:"required"`
	BankAccountNo string  `json:"bankAccountNo" validate:"required"`
	BankName      string  `json:"bankName" validate:"required"`
	AddressLine1  *string `json:"addressLine1"`
	AddressLine2  string  `json:"addressLine2" validate:"required"`
	City          *string `json:"city"`
	Country       *string `json:"country"`
	ZipCode       *string `json:"zipCode"`
}

// VendorPatch is the payload for updating a vendor. A nil field is left unchanged;
// an empty optional field clears it.
type VendorPatch struct {
	Name          *string `json:"name"`
	BankAccountNo *string `json:"bankAccountNo"`
	BankName      *string `json:"bankName"`
	AddressLine1  *string `json:"addressLine1"`
	AddressLine2  *string `json:"addressLine2"`
	City          *string `json:"city"`
	Country       *string `json:"country"`
	ZipCode       *string `json:"zipCode"`
}

// VendorService provides ownership-scoped CRUD over vendors.
type VendorService struct {
	vendors   store.VendorRepository
	publisher rabbitmq.Publisher
	exchange  string
	validate  *validator.Validate
}

// NewVendorService creates a new VendorService. A nil publisher disables events.
func NewVendorService(vendors store.VendorRepository, publisher rabbitmq.Publisher, exchange string) *VendorService {
	return &VendorService{
		vendors:   vendors,
		publisher: publisher,
		exchange:  exchange,
		validate:  newValidator(),
	}
}

// ListVendors returns the session user's vendors, newest first.
func (s *VendorService) ListVendors(ctx context.Context, session *domain.Session) ([]domain.Vendor, error) {
	if err := requireUser(session); err != nil {
		return nil, err
	}

	vendors, err := s.vendors.ListVendorsByUserID(ctx, session.UserID)
	if err != nil {
		log.Printf("level=error component=vendor_service msg=\"list vendors failed\" user_id=%s err=%v", session.UserID, err)
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if vendors == nil {
		vendors = []domain.Vendor{}
	}
	return vendors, nil
}

// CreateVendor persists a new vendor owned by the session user.
func (s *VendorService) CreateVendor(ctx context.Context, session *domain.Session, input VendorInput) (*domain.Vendor, error) {
	if err := requireUser(session); err != nil {
		return nil, err
	}

	input = normalizeInput(input)
	if err := s.validateStruct(input); err != nil {
		return nil, err
	}

	vendor := &domain.Vendor{
		ID:            uuid.New(),
		Name:          input.Name,
		BankAccountNo: input.BankAccountNo,
		BankName:      input.BankName,
		AddressLine1:  input.AddressLine1,
		AddressLine2:  input.AddressLine2,
		City:          input.City,
		Country:       input.Country,
		ZipCode:       input.ZipCode,
		UserID:        session.UserID,
	}

	created, err := s.vendors.CreateVendor(ctx, vendor)
	if err != nil {
		log.Printf("level=error component=vendor_service msg=\"create vendor failed\" user_id=%s err=%v", session.UserID, err)
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	log.Printf("level=info component=vendor_service msg=\"vendor created\" vendor_id=%s user_id=%s", created.ID, created.UserID)
	s.publish(ctx, domain.VendorCreatedEvent, created.ID, created.UserID, created)
	return created, nil
}

// UpdateVendor applies patch to a vendor owned by the session user.
func (s *VendorService) UpdateVendor(ctx context.Context, session *domain.Session, vendorID string, patch VendorPatch) (*domain.Vendor, error) {
	existing, err := s.loadAuthorized(ctx, session, vendorID)
	if err != nil {
		return nil, err
	}

	updated := applyPatch(*existing, patch)
	if err := s.validateStruct(inputFromVendor(updated)); err != nil {
		return nil, err
	}

	saved, err := s.vendors.UpdateVendor(ctx, &updated)
	if err != nil {
		if errors.Is(err, store.ErrVendorNotFound) {
			return nil, ErrNotFound
		}
		log.Printf("level=error component=vendor_service msg=\"update vendor failed\" vendor_id=%s err=%v", existing.ID, err)
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	log.Printf("level=info component=vendor_service msg=\"vendor updated\" vendor_id=%s user_id=%s", saved.ID, saved.UserID)
	s.publish(ctx, domain.VendorUpdatedEvent, saved.ID, saved.UserID, saved)
	return saved, nil
}

// DeleteVendor permanently removes a vendor owned by the session user.
func (s *VendorService) DeleteVendor(ctx context.Context, session *domain.Session, vendorID string) error {
	existing, err := s.loadAuthorized(ctx, session, vendorID)
	if err != nil {
		return err
	}

	if err := s.vendors.DeleteVendor(ctx, existing.ID, session.UserID); err != nil {
		if errors.Is(err, store.ErrVendorNotFound) {
			return ErrNotFound
		}
		log.Printf("level=error component=vendor_service msg=\"delete vendor failed\" vendor_id=%s err=%v", existing.ID, err)
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	log.Printf("level=info component=vendor_service msg=\"vendor deleted\" vendor_id=%s user_id=%s", existing.ID, session.UserID)
	s.publish(ctx, domain.VendorDeletedEvent, existing.ID, session.UserID, nil)
	return nil
}

// loadAuthorized fetches the vendor and runs it through Authorize. Ids that are
// not UUIDs cannot exist and are reported as not found.
func (s *VendorService) loadAuthorized(ctx context.Context, session *domain.Session, vendorID string) (*domain.Vendor, error) {
	if err := requireUser(session); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(strings.TrimSpace(vendorID))
	if err != nil {
		return nil, ErrNotFound
	}

	vendor, err := s.vendors.FindVendorByID(ctx, id)
	if err != nil && !errors.Is(err, store.ErrVendorNotFound) {
		log.Printf("level=error component=vendor_service msg=\"find vendor failed\" vendor_id=%s err=%v", id, err)
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if err := Authorize(session, vendor); err != nil {
		if errors.Is(err, ErrForbidden) {
			log.Printf("level=warn component=vendor_service msg=\"ownership check failed\" vendor_id=%s user_id=%s", id, session.UserID)
		}
		return nil, err
	}
	return vendor, nil
}

func (s *VendorService) validateStruct(input VendorInput) error {
	err := s.validate.Struct(input)
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

func (s *VendorService) publish(ctx context.Context, eventType string, vendorID, userID uuid.UUID, vendor *domain.Vendor) {
	if s.publisher == nil {
		return
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	event := domain.VendorChangedEvent{
		Type:       eventType,
		VendorID:   vendorID,
		UserID:     userID,
		Vendor:     vendor,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.publisher.Publish(pubCtx, s.exchange, eventType, event); err != nil {
		log.Printf("level=warn component=vendor_service msg=\"vendor event publish failed\" event=%s vendor_id=%s err=%v", eventType, vendorID, err)
	}
}

// newValidator reports field errors under their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return v
}

func normalizeInput(input VendorInput) VendorInput {
	input.Name = strings.TrimSpace(input.Name)
	input.BankAccountNo = strings.TrimSpace(input.BankAccountNo)
	input.BankName = strings.TrimSpace(input.BankName)
	input.AddressLine2 = strings.TrimSpace(input.AddressLine2)
	input.AddressLine1 = optional(input.AddressLine1)
	input.City = optional(input.City)
	input.Country = optional(input.Country)
	input.ZipCode = optional(input.ZipCode)
	return input
}

func applyPatch(v domain.Vendor, patch VendorPatch) domain.Vendor {
	if patch.Name != nil {
		v.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.BankAccountNo != nil {
		v.BankAccountNo = strings.TrimSpace(*patch.BankAccountNo)
	}
	if patch.BankName != nil {
		v.BankName = strings.TrimSpace(*patch.BankName)
	}
	if patch.AddressLine2 != nil {
		v.AddressLine2 = strings.TrimSpace(*patch.AddressLine2)
	}
	if patch.AddressLine1 != nil {
		v.AddressLine1 = optional(patch.AddressLine1)
	}
	if patch.City != nil {
		v.City = optional(patch.City)
	}
	if patch.Country != nil {
		v.Country = optional(patch.Country)
	}
	if patch.ZipCode != nil {
		v.ZipCode = optional(patch.ZipCode)
	}
	return v
}

func inputFromVendor(v domain.Vendor) VendorInput {
	return VendorInput{
		Name:          v.Name,
		BankAccountNo: v.BankAccountNo,
		BankName:      v.BankName,
		AddressLine1:  v.AddressLine1,
		AddressLine2:  v.AddressLine2,
		City:          v.City,
		Country:       v.Country,
		ZipCode:       v.ZipCode,
	}
}

// optional trims s and maps blank values to nil (stored as NULL).
func optional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
