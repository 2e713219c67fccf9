package translator

import (
	"fmt"
	"time"

	"github.com/hyperengineering/edgereplica/internal/cdc"
)

type supplierRecord struct {
	ID             cdc.ID         `json:"id" validate:"required"`
	Name           string         `json:"name" validate:"required"`
	SupplierType   *string        `json:"supplier_type"`
	ContactName    *string        `json:"contact_name"`
	ContactEmail   *string        `json:"contact_email" validate:"omitempty,email"`
	ContactPhone   *string        `json:"contact_phone"`
	Website        *string        `json:"website"`
	Address        *string        `json:"address"`
	City           *string        `json:"city"`
	State          *string        `json:"state"`
	PostalCode     *string        `json:"postal_code"`
	Country        *string        `json:"country"`
	Certifications cdc.StringList `json:"certifications"`
	SpecialtyItems cdc.StringList `json:"specialty_items"`
	CreatedAt      *string        `json:"created_at"`
}

var supplierColumns = []string{
	"id", "name", "supplier_type",
	"contact_name", "contact_email", "contact_phone", "website",
	"address", "city", "state", "postal_code", "country",
	"certifications", "specialty_items", "created_at", "updated_at",
}

func translateSupplier(ev cdc.Event, now time.Time) (Statement, error) {
	if ev.IsDelete() {
		id, err := deleteKey(ev, false)
		if err != nil {
			return Statement{}, err
		}
		return deleteByID("suppliers", id), nil
	}

	rec, err := cdc.DecodeRecord[supplierRecord](ev.Record)
	if err != nil {
		return Statement{}, fmt.Errorf("suppliers: %w", err)
	}

	return upsert("suppliers", supplierColumns, []any{
		rec.ID.String(),
		rec.Name,
		rec.SupplierType,
		rec.ContactName,
		rec.ContactEmail,
		rec.ContactPhone,
		rec.Website,
		rec.Address,
		rec.City,
		rec.State,
		rec.PostalCode,
		rec.Country,
		rec.Certifications.JSON(),
		rec.SpecialtyItems.JSON(),
		timestampOr(rec.CreatedAt, now),
		formatTime(now),
	}), nil
}

type supplierRelationshipRecord struct {
	ID               cdc.ID  `json:"id" validate:"required"`
	RestaurantID     cdc.ID  `json:"restaurant_id" validate:"required"`
	SupplierID       cdc.ID  `json:"supplier_id" validate:"required"`
	RelationshipType *string `json:"relationship_type"`
	StartDate        *string `json:"start_date"`
	IsActive         *bool   `json:"is_active"`
	CreatedAt        *string `json:"created_at"`
}

var supplierRelationshipColumns = []string{
	"id", "restaurant_id", "supplier_id", "relationship_type",
	"start_date", "is_active", "created_at", "updated_at",
}

func translateSupplierRelationship(ev cdc.Event, now time.Time) (Statement, error) {
	if ev.IsDelete() {
		id, err := deleteKey(ev, false)
		if err != nil {
			return Statement{}, err
		}
		return deleteByID("supplier_relationships", id), nil
	}

	rec, err := cdc.DecodeRecord[supplierRelationshipRecord](ev.Record)
	if err != nil {
		return Statement{}, fmt.Errorf("supplier_relationships: %w", err)
	}

	return upsert("supplier_relationships", supplierRelationshipColumns, []any{
		rec.ID.String(),
		rec.RestaurantID.String(),
		rec.SupplierID.String(),
		rec.RelationshipType,
		rec.StartDate,
		// Relationships are active unless the row says otherwise.
		boolInt(rec.IsActive, true),
		timestampOr(rec.CreatedAt, now),
		formatTime(now),
	}), nil
}
