package server

import (
	"net/http"
	"testing"
	"time"

	"sublet/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func applicationIDs(apps []models.Application) []uint {
	ids := make([]uint, 0, len(apps))
	for _, a := range apps {
		ids = append(ids, a.ID)
	}
	return ids
}

func TestApplicationLifecycle(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	priya := env.token(t, priyaID)
	sofia := env.token(t, sofiaID)
	from := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	resp := env.do(t, http.MethodPost, "/api/listings/5/applications", priya, SubmitApplicationRequest{
		RequestedFrom: from,
		RequestedTo:   from.AddDate(0, 2, 0),
		Message:       "Interning in Kendall this summer.",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	app := decode[models.Application](t, resp)
	assert.Equal(t, uint(5), app.ID)
	assert.Equal(t, priyaID, app.ApplicantID)
	assert.Equal(t, models.ApplicationStatusPending, app.Status)

	resp = env.do(t, http.MethodGet, "/api/me/applications/received", sofia, nil)
	assert.Equal(t, []uint{5}, applicationIDs(decode[[]models.Application](t, resp)))

	resp = env.do(t, http.MethodPost, "/api/listings/5/applications", priya, SubmitApplicationRequest{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "second open application")

	resp = env.do(t, http.MethodPatch, "/api/applications/5", sofia,
		UpdateApplicationRequest{Status: models.ApplicationStatusAccepted})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, models.ApplicationStatusAccepted, decode[models.Application](t, resp).Status)

	resp = env.do(t, http.MethodGet, "/api/me/applications", priya, nil)
	mine := decode[[]models.Application](t, resp)
	require.Len(t, mine, 1)
	assert.Equal(t, models.ApplicationStatusAccepted, mine[0].Status)

	resp = env.do(t, http.MethodPatch, "/api/applications/5", sofia,
		UpdateApplicationRequest{Status: models.ApplicationStatusDeclined})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, models.CodeInvalidTransition, decode[models.ErrorResponse](t, resp).Code)
}

func TestUpdateApplicationStatus(t *testing.T) {
	tests := []struct {
		name           string
		userID         uint
		appID          string
		status         models.ApplicationStatus
		expectedStatus int
	}{
		{name: "Owner Declines", userID: jamesID, appID: "2", status: models.ApplicationStatusDeclined, expectedStatus: http.StatusOK},
		{name: "Applicant Withdraws", userID: danielID, appID: "2", status: models.ApplicationStatusWithdrawn, expectedStatus: http.StatusOK},
		{name: "Stranger Accepts", userID: mariaID, appID: "2", status: models.ApplicationStatusAccepted, expectedStatus: http.StatusForbidden},
		{name: "Owner Withdraws", userID: jamesID, appID: "2", status: models.ApplicationStatusWithdrawn, expectedStatus: http.StatusForbidden},
		{name: "Back To Pending", userID: jamesID, appID: "2", status: models.ApplicationStatusPending, expectedStatus: http.StatusConflict},
		{name: "Already Accepted", userID: jamesID, appID: "1", status: models.ApplicationStatusDeclined, expectedStatus: http.StatusConflict},
		{name: "Unknown Status", userID: jamesID, appID: "2", status: "approved", expectedStatus: http.StatusBadRequest},
		{name: "Unknown Application", userID: jamesID, appID: "99", status: models.ApplicationStatusDeclined, expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil, nil)
			resp := env.do(t, http.MethodPatch, "/api/applications/"+tt.appID, env.token(t, tt.userID),
				UpdateApplicationRequest{Status: tt.status})
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestSubmitApplication_Rules(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	tests := []struct {
		name           string
		userID         uint
		listingID      string
		expectedStatus int
	}{
		{name: "Own Listing", userID: jamesID, listingID: "1", expectedStatus: http.StatusBadRequest},
		{name: "Accepted Already", userID: mariaID, listingID: "2", expectedStatus: http.StatusBadRequest},
		{name: "Reapply After Decline", userID: mariaID, listingID: "3", expectedStatus: http.StatusCreated},
		{name: "Unknown Listing", userID: mariaID, listingID: "99", expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.do(t, http.MethodPost, "/api/listings/"+tt.listingID+"/applications",
				env.token(t, tt.userID), SubmitApplicationRequest{Message: "hello"})
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}

	resp := env.do(t, http.MethodPost, "/api/listings/1/applications", "", SubmitApplicationRequest{})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGetReceivedApplications(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	resp := env.do(t, http.MethodGet, "/api/me/applications/received", env.token(t, jamesID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []uint{1, 2}, applicationIDs(decode[[]models.Application](t, resp)))

	resp = env.do(t, http.MethodGet, "/api/me/applications/received", env.token(t, mariaID), nil)
	assert.Empty(t, decode[[]models.Application](t, resp))
}
