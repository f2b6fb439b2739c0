// Copyright (c) 2026 FamVault. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema names every table and column the Postgres stores touch, so
// a rename in data/migrations is a one-line change here.
package schema

import "strings"

// List joins column names for SELECT and RETURNING clauses.
func List(columns []string) string {
	return strings.Join(columns, ", ")
}
