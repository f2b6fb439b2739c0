// Copyright (c) 2026 FamVault. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// VaultContactTable represents the 'vault.contact' table
type VaultContactTable struct {
	Table              string
	ID                 string
	UserID             string
	Name               string
	Relationship       string
	Phone              string
	IsEmergencyService string
	CreatedAt          string
}

// VaultContact is the schema definition for vault.contact
var VaultContact = VaultContactTable{
	Table:              "vault.contact",
	ID:                 "id",
	UserID:             "userid",
	Name:               "name",
	Relationship:       "relationship",
	Phone:              "phone",
	IsEmergencyService: "isemergencyservice",
	CreatedAt:          "createdat",
}

// Columns returns all standard column names
func (t VaultContactTable) Columns() []string {
	return []string{t.ID, t.UserID, t.Name, t.Relationship, t.Phone, t.IsEmergencyService, t.CreatedAt}
}
