// Copyright (c) 2026 FamVault. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// VaultFolderTable represents the 'vault.folder' table
type VaultFolderTable struct {
	Table     string
	ID        string
	UserID    string
	Name      string
	Category  string
	CreatedAt string
}

// VaultFolder is the schema definition for vault.folder
var VaultFolder = VaultFolderTable{
	Table:     "vault.folder",
	ID:        "id",
	UserID:    "userid",
	Name:      "name",
	Category:  "category",
	CreatedAt: "createdat",
}

// Columns returns all standard column names
func (t VaultFolderTable) Columns() []string {
	return []string{t.ID, t.UserID, t.Name, t.Category, t.CreatedAt}
}
