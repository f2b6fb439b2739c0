// Copyright (c) 2026 FamVault. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package contact_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/famvault/internal/platform/apperr"
	"github.com/taibuivan/famvault/internal/platform/ctxutil"
	"github.com/taibuivan/famvault/internal/platform/sec"
	"github.com/taibuivan/famvault/internal/vault/contact"
)

type memoryContacts struct {
	mu   sync.Mutex
	rows []*contact.Contact
}

func (repo *memoryContacts) ListByUser(_ context.Context, userID string) ([]*contact.Contact, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	var owned []*contact.Contact
	for _, row := range repo.rows {
		if row.UserID == userID {
			owned = append(owned, row)
		}
	}
	sort.SliceStable(owned, func(i, j int) bool {
		return owned[i].IsEmergencyService && !owned[j].IsEmergencyService
	})
	return owned, nil
}

func (repo *memoryContacts) Create(_ context.Context, row *contact.Contact) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	row.CreatedAt = time.Now()
	repo.rows = append(repo.rows, row)
	return nil
}

func (repo *memoryContacts) Delete(_ context.Context, userID, id string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for i, row := range repo.rows {
		if row.ID == id && row.UserID == userID {
			repo.rows = append(repo.rows[:i], repo.rows[i+1:]...)
			return nil
		}
	}
	return contact.ErrContactNotFound
}

/*
TestService_Create validates input and stores trimmed values.
*/
func TestService_Create(t *testing.T) {
	service := contact.NewService(&memoryContacts{})
	ctx := context.Background()

	tests := []struct {
		name    string
		input   contact.CreateInput
		wantErr bool
	}{
		{"valid", contact.CreateInput{Name: " Mom ", Relationship: "Mother", Phone: "+1 (555) 010-2000"}, false},
		{"missing_name", contact.CreateInput{Phone: "5550100"}, true},
		{"missing_phone", contact.CreateInput{Name: "Dad"}, true},
		{"bad_phone", contact.CreateInput{Name: "Dad", Phone: "call me"}, true},
		{"long_relationship", contact.CreateInput{Name: "Dad", Phone: "5550100", Relationship: strings.Repeat("r", 51)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			created, err := service.Create(ctx, "user-1", tt.input)
			if tt.wantErr {
				assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Mom", created.Name)
			assert.NotEmpty(t, created.ID)
		})
	}
}

/*
TestService_Ownership hides and protects other users' contacts.
*/
func TestService_Ownership(t *testing.T) {
	service := contact.NewService(&memoryContacts{})
	ctx := context.Background()

	mine, err := service.Create(ctx, "user-1", contact.CreateInput{Name: "Mom", Phone: "5550100"})
	require.NoError(t, err)
	_, err = service.Create(ctx, "user-1", contact.CreateInput{Name: "Ambulance", Phone: "911", IsEmergencyService: true})
	require.NoError(t, err)

	listed, err := service.List(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "Ambulance", listed[0].Name)

	others, err := service.List(ctx, "user-2")
	require.NoError(t, err)
	assert.Empty(t, others)

	assert.ErrorIs(t, service.Delete(ctx, "user-2", mine.ID), contact.ErrContactNotFound)
	assert.NoError(t, service.Delete(ctx, "user-1", mine.ID))
	assert.ErrorIs(t, service.Delete(ctx, "user-1", mine.ID), contact.ErrContactNotFound)
}

/*
TestHandler_Routes exercises the JSON endpoints for a signed-in user.
*/
func TestHandler_Routes(t *testing.T) {
	handler := contact.NewHandler(contact.NewService(&memoryContacts{}))

	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := &sec.SessionClaims{UserID: "user-1", Email: "a@x.com"}
			next.ServeHTTP(w, r.WithContext(ctxutil.WithSession(r.Context(), claims)))
		})
	})
	router.Mount("/emergency-contacts", handler.Routes())

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/emergency-contacts",
		strings.NewReader(`{"name":"Mom","phone":"5550100","relationship":"Mother"}`)))
	require.Equal(t, http.StatusCreated, recorder.Code)

	var created struct {
		Data contact.Contact `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &created))
	assert.Equal(t, "Mom", created.Data.Name)

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/emergency-contacts", strings.NewReader(`{`)))
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/emergency-contacts", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"name":"Mom"`)

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/emergency-contacts/"+created.Data.ID+"/delete", nil))
	assert.Equal(t, http.StatusNoContent, recorder.Code)

	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/emergency-contacts/"+created.Data.ID+"/delete", nil))
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}
