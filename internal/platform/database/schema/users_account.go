// Copyright (c) 2026 FamVault. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// UserAccountTable represents the 'users.account' table
type UserAccountTable struct {
	Table        string
	ID           string
	Name         string
	Email        string
	Password     string
	IsVerified   string
	OTPHash      string
	OTPExpiresAt string
	Phone        string
	DateOfBirth  string
	Gender       string
	BloodGroup   string
	Address      string
	Allergies    string
	Conditions   string
	ProfilePic   string
	CreatedAt    string
	UpdatedAt    string
}

// UserAccount is the schema definition for users.account
var UserAccount = UserAccountTable{
	Table:        "users.account",
	ID:           "id",
	Name:         "name",
	Email:        "email",
	Password:     "passwordhash",
	IsVerified:   "isverified",
	OTPHash:      "otphash",
	OTPExpiresAt: "otpexpiresat",
	Phone:        "phone",
	DateOfBirth:  "dateofbirth",
	Gender:       "gender",
	BloodGroup:   "bloodgroup",
	Address:      "address",
	Allergies:    "allergies",
	Conditions:   "conditions",
	ProfilePic:   "profilepic",
	CreatedAt:    "createdat",
	UpdatedAt:    "updatedat",
}

// Columns returns all standard column names
func (t UserAccountTable) Columns() []string {
	return []string{
		t.ID, t.Name, t.Email, t.Password, t.IsVerified, t.OTPHash, t.OTPExpiresAt,
		t.Phone, t.DateOfBirth, t.Gender, t.BloodGroup, t.Address, t.Allergies,
		t.Conditions, t.ProfilePic, t.CreatedAt, t.UpdatedAt,
	}
}
