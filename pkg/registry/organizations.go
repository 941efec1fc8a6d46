package registry

import (
	"context"
	"fmt"

	"react2give/pkg/models"
	"react2give/pkg/utils"
)

func (s *Store) CreateOrganization(ctx context.Context, o *models.Organization) error {
	if o.ID == "" {
		o.ID = utils.GenerateUUID7()
	}
	query := `INSERT INTO organizations (id, organization_name, contact_person, email, phone_number, website, address)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query, o.ID, o.OrganizationName, o.ContactPerson, o.Email,
		o.PhoneNumber, o.Website, o.Address)
	if err != nil {
		return fmt.Errorf("insert organization: %w", err)
	}
	return nil
}

func (s *Store) ListOrganizations(ctx context.Context) ([]models.Organization, error) {
	query := `SELECT id, organization_name, contact_person, email, phone_number, COALESCE(website, ''),
			  COALESCE(address, ''), created_at FROM organizations ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query organizations: %w", err)
	}
	defer rows.Close()

	orgs := []models.Organization{}
	for rows.Next() {
		var o models.Organization
		if err := rows.Scan(&o.ID, &o.OrganizationName, &o.ContactPerson, &o.Email, &o.PhoneNumber,
			&o.Website, &o.Address, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan organization: %w", err)
		}
		orgs = append(orgs, o)
	}
	return orgs, rows.Err()
}
