// Copyright (c) 2026 FamVault. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/famvault/internal/platform/apperr"
	"github.com/taibuivan/famvault/internal/platform/constants"
	"github.com/taibuivan/famvault/internal/platform/ctxutil"
	"github.com/taibuivan/famvault/internal/platform/sec"
	"github.com/taibuivan/famvault/internal/users/account"
	"github.com/taibuivan/famvault/internal/vault"
	"github.com/taibuivan/famvault/internal/vault/contact"
	"github.com/taibuivan/famvault/internal/vault/document"
	"github.com/taibuivan/famvault/pkg/pointer"
)

// # Fakes

type memoryProfiles struct {
	profiles map[string]*account.Profile
	deleted  []string
}

func newMemoryProfiles() *memoryProfiles {
	return &memoryProfiles{profiles: map[string]*account.Profile{
		"user-1": {
			ID: "user-1", Name: "Asha", Email: "asha@example.com",
			Gender: account.GenderUndisclosed, BloodGroup: account.BloodGroupUnknown,
			Allergies: "None", Conditions: "None",
		},
	}}
}

func (repo *memoryProfiles) FindByID(_ context.Context, id string) (*account.Profile, error) {
	profile, ok := repo.profiles[id]
	if !ok {
		return nil, account.ErrProfileNotFound
	}
	copied := *profile
	return &copied, nil
}

func (repo *memoryProfiles) Update(_ context.Context, id string, patch account.ProfilePatch) (*account.Profile, error) {
	profile, ok := repo.profiles[id]
	if !ok {
		return nil, account.ErrProfileNotFound
	}

	apply := func(target *string, value *string) {
		if value != nil {
			*target = *value
		}
	}
	apply(&profile.Name, patch.Name)
	apply(&profile.Phone, patch.Phone)
	apply(&profile.DateOfBirth, patch.DateOfBirth)
	apply(&profile.Gender, patch.Gender)
	apply(&profile.BloodGroup, patch.BloodGroup)
	apply(&profile.Address, patch.Address)
	apply(&profile.Allergies, patch.Allergies)
	apply(&profile.Conditions, patch.Conditions)
	apply(&profile.ProfilePic, patch.ProfilePic)

	copied := *profile
	return &copied, nil
}

func (repo *memoryProfiles) DeleteByID(_ context.Context, id string) error {
	if _, ok := repo.profiles[id]; !ok {
		return apperr.NotFound("User")
	}
	delete(repo.profiles, id)
	repo.deleted = append(repo.deleted, id)
	return nil
}

type stubContacts struct {
	contacts []*contact.Contact
	err      error
}

func (stub stubContacts) List(context.Context, string) ([]*contact.Contact, error) {
	return stub.contacts, stub.err
}

type stubRecords struct {
	documents []*document.Document
	asked     vault.Category
}

func (stub *stubRecords) Titles(_ context.Context, _ string, category vault.Category) ([]*document.Document, error) {
	stub.asked = category
	return stub.documents, nil
}

type fixture struct {
	service  *account.Service
	profiles *memoryProfiles
	records  *stubRecords
}

func newFixture(contacts stubContacts) *fixture {
	f := &fixture{profiles: newMemoryProfiles(), records: &stubRecords{}}
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	f.service = account.NewService(f.profiles, f.profiles, contacts, f.records).
		WithClock(func() time.Time { return now })
	return f
}

// # Service

/*
TestUpdateProfile_Partial changes only the given fields and trims them.
*/
func TestUpdateProfile_Partial(t *testing.T) {
	f := newFixture(stubContacts{})

	profile, err := f.service.UpdateProfile(context.Background(), "user-1", account.ProfilePatch{
		Phone:       pointer.To("  +1 555 0100 "),
		BloodGroup:  pointer.To("O+"),
		DateOfBirth: pointer.To("1990-02-14"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Asha", profile.Name)
	assert.Equal(t, "+1 555 0100", profile.Phone)
	assert.Equal(t, "O+", profile.BloodGroup)
	assert.Equal(t, "1990-02-14", profile.DateOfBirth)
	assert.Equal(t, account.GenderUndisclosed, profile.Gender)

	cleared, err := f.service.UpdateProfile(context.Background(), "user-1", account.ProfilePatch{DateOfBirth: pointer.To("")})
	require.NoError(t, err)
	assert.Empty(t, cleared.DateOfBirth)
}

/*
TestUpdateProfile_Rejects covers the validation rules.
*/
func TestUpdateProfile_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		patch account.ProfilePatch
		field string
	}{
		{"blank_name", account.ProfilePatch{Name: pointer.To("   ")}, account.FieldName},
		{"unknown_gender", account.ProfilePatch{Gender: pointer.To("Robot")}, account.FieldGender},
		{"unknown_blood_group", account.ProfilePatch{BloodGroup: pointer.To("C+")}, account.FieldBloodGroup},
		{"malformed_date", account.ProfilePatch{DateOfBirth: pointer.To("14/02/1990")}, account.FieldDateOfBirth},
		{"future_date", account.ProfilePatch{DateOfBirth: pointer.To("2030-01-01")}, account.FieldDateOfBirth},
		{"long_allergies", account.ProfilePatch{Allergies: pointer.To(strings.Repeat("a", 501))}, account.FieldAllergies},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(stubContacts{})

			_, err := f.service.UpdateProfile(context.Background(), "user-1", tt.patch)
			appError := apperr.As(err)
			require.NotNil(t, appError)
			assert.Equal(t, apperr.CodeValidation, appError.Code)
			require.NotEmpty(t, appError.Details)
			assert.Equal(t, tt.field, appError.Details[0].Field)
		})
	}

	f := newFixture(stubContacts{})
	_, err := f.service.UpdateProfile(context.Background(), "user-1", account.ProfilePatch{})
	assert.ErrorIs(t, err, account.ErrEmptyPatch)

	_, err = f.service.UpdateProfile(context.Background(), "ghost", account.ProfilePatch{Phone: pointer.To("1")})
	assert.ErrorIs(t, err, account.ErrProfileNotFound)
}

/*
TestEmergencyCard combines the profile, contacts and medical record titles.
*/
func TestEmergencyCard(t *testing.T) {
	contacts := []*contact.Contact{
		{ID: "c-1", Name: "Ambulance", Phone: "112", IsEmergencyService: true},
		{ID: "c-2", Name: "Ravi", Relationship: "Brother", Phone: "+1 555 0101"},
	}
	f := newFixture(stubContacts{contacts: contacts})
	f.records.documents = []*document.Document{{Title: "Blood test"}, {Title: "X-ray"}}

	card, err := f.service.EmergencyCard(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, vault.CategoryMedical, f.records.asked)
	assert.Equal(t, "Asha", card.Name)
	assert.Equal(t, account.BloodGroupUnknown, card.BloodGroup)
	assert.Equal(t, []string{"Blood test", "X-ray"}, card.MedicalRecords)
	assert.Len(t, card.Contacts, 2)

	f.records.documents = nil
	card, err = f.service.EmergencyCard(context.Background(), "user-1")
	require.NoError(t, err)
	assert.NotNil(t, card.MedicalRecords)
	assert.Empty(t, card.MedicalRecords)

	broken := newFixture(stubContacts{err: errors.New("pool closed")})
	_, err = broken.service.EmergencyCard(context.Background(), "user-1")
	assert.Error(t, err)
}

/*
TestDeleteAccount removes the user row.
*/
func TestDeleteAccount(t *testing.T) {
	f := newFixture(stubContacts{})

	require.NoError(t, f.service.DeleteAccount(context.Background(), "user-1"))
	assert.Equal(t, []string{"user-1"}, f.profiles.deleted)

	_, err := f.service.GetProfile(context.Background(), "user-1")
	assert.ErrorIs(t, err, account.ErrProfileNotFound)

	err = f.service.DeleteAccount(context.Background(), "user-1")
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}

// # HTTP

func newRouter(f *fixture) http.Handler {
	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := &sec.SessionClaims{UserID: "user-1", Email: "asha@example.com"}
			next.ServeHTTP(w, r.WithContext(ctxutil.WithSession(r.Context(), claims)))
		})
	})
	account.NewHandler(f.service, false).RegisterRoutes(router)
	return router
}

func postForm(router http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	request := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

/*
TestHandler_Profile reads and updates the profile through the form flow.
*/
func TestHandler_Profile(t *testing.T) {
	f := newFixture(stubContacts{})
	router := newRouter(f)

	recorder := postForm(router, "/profile", url.Values{"gender": {"Female"}, "allergies": {"Penicillin"}})
	assert.Equal(t, http.StatusFound, recorder.Code)
	assert.Equal(t, "/profile?message=Profile+updated+successfully", recorder.Header().Get("Location"))

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/profile", nil))
	require.Equal(t, http.StatusOK, recorder.Code)
	body := recorder.Body.String()
	assert.Contains(t, body, `"gender":"Female"`)
	assert.Contains(t, body, `"allergies":"Penicillin"`)
	assert.Contains(t, body, `"conditions":"None"`)

	recorder = postForm(router, "/profile", url.Values{"gender": {"Robot"}})
	assert.Equal(t, http.StatusFound, recorder.Code)
	location, err := url.Parse(recorder.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/profile", location.Path)
	assert.Contains(t, location.Query().Get("message"), "gender")
}

/*
TestHandler_EmergencyMode answers the emergency card as JSON.
*/
func TestHandler_EmergencyMode(t *testing.T) {
	f := newFixture(stubContacts{contacts: []*contact.Contact{{ID: "c-1", Name: "Ambulance", Phone: "112", IsEmergencyService: true}}})
	f.records.documents = []*document.Document{{Title: "Allergy report"}}

	recorder := httptest.NewRecorder()
	newRouter(f).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/emergency-mode", nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"medicalRecords":["Allergy report"]`)
	assert.Contains(t, recorder.Body.String(), `"Ambulance"`)
}

/*
TestHandler_DeleteAccount clears the session cookie and sends the client to /login.
*/
func TestHandler_DeleteAccount(t *testing.T) {
	f := newFixture(stubContacts{})

	recorder := postForm(newRouter(f), "/delete-account", url.Values{})
	assert.Equal(t, http.StatusFound, recorder.Code)
	assert.True(t, strings.HasPrefix(recorder.Header().Get("Location"), "/login?message="))

	cookies := recorder.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, constants.SessionCookieName, cookies[0].Name)
	assert.Negative(t, cookies[0].MaxAge)
	assert.Empty(t, f.profiles.profiles)
}
