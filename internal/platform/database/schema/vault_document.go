// Copyright (c) 2026 FamVault. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// VaultDocumentTable represents the 'vault.document' table
type VaultDocumentTable struct {
	Table        string
	ID           string
	UserID       string
	Title        string
	Category     string
	FolderID     string
	StorageKey   string
	OriginalName string
	FileType     string
	Size         string
	HasReminder  string
	ReminderDate string
	ReminderNote string
	CreatedAt    string
	LastAccessed string
}

// VaultDocument is the schema definition for vault.document
var VaultDocument = VaultDocumentTable{
	Table:        "vault.document",
	ID:           "id",
	UserID:       "userid",
	Title:        "title",
	Category:     "category",
	FolderID:     "folderid",
	StorageKey:   "storagekey",
	OriginalName: "originalname",
	FileType:     "filetype",
	Size:         "sizebytes",
	HasReminder:  "hasreminder",
	ReminderDate: "reminderdate",
	ReminderNote: "remindernote",
	CreatedAt:    "createdat",
	LastAccessed: "lastaccessedat",
}

// Columns returns all standard column names
func (t VaultDocumentTable) Columns() []string {
	return []string{
		t.ID, t.UserID, t.Title, t.Category, t.FolderID, t.StorageKey, t.OriginalName,
		t.FileType, t.Size, t.HasReminder, t.ReminderDate, t.ReminderNote,
		t.CreatedAt, t.LastAccessed,
	}
}
