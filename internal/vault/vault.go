// Copyright (c) 2026 FamVault. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package vault holds the vocabulary shared by the vault packages.

The vault is everything a user keeps in FamVault besides their credentials:
documents and medical records, the folders that group them, and emergency
contacts. Each subpackage owns one entity; all of them scope every read and
write to the owning user.
*/
package vault

import "github.com/taibuivan/famvault/internal/platform/apperr"

// Category separates general documents from medical records.
type Category string

const (
	CategoryDocument Category = "document"
	CategoryMedical  Category = "medical"
)

// ErrInvalidCategory is returned for anything other than a known category.
var ErrInvalidCategory = apperr.ValidationError("category: Must be one of: document, medical")

// ParseCategory resolves a client-supplied category. Blank means fallback.
func ParseCategory(value string, fallback Category) (Category, error) {
	switch Category(value) {
	case "":
		return fallback, nil
	case CategoryDocument, CategoryMedical:
		return Category(value), nil
	}
	return "", ErrInvalidCategory
}
