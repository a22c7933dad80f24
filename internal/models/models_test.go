package models

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListingTotalUpfront(t *testing.T) {
	tests := []struct {
		name    string
		listing Listing
		want    int
	}{
		{
			name: "utilities billed separately",
			listing: Listing{
				MonthlyRent: 1200, SecurityDeposit: 1200, BrokerFee: 0,
				ApplicationFee: 50, EstimatedUtilities: 90,
			},
			want: 2540,
		},
		{
			name: "utilities included",
			listing: Listing{
				MonthlyRent: 1200, SecurityDeposit: 1200, BrokerFee: 600,
				ApplicationFee: 50, EstimatedUtilities: 90, UtilitiesIncluded: true,
			},
			want: 3050,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.listing.TotalUpfront())
		})
	}
}

func TestListingPatchApply(t *testing.T) {
	l := Listing{Title: "Old", MonthlyRent: 900, Amenities: []string{"wifi"}, Status: ListingStatusAvailable}
	title := "New"
	status := ListingStatusRented
	amenities := []string{"gym", "laundry"}

	ListingPatch{Title: &title, Status: &status, Amenities: &amenities}.Apply(&l)

	assert.Equal(t, "New", l.Title)
	assert.Equal(t, 900, l.MonthlyRent)
	assert.Equal(t, ListingStatusRented, l.Status)
	assert.Equal(t, []string{"gym", "laundry"}, []string(l.Amenities))

	amenities[0] = "pool"
	assert.Equal(t, "gym", l.Amenities[0], "patch slices must be copied")
}

func TestListingClone(t *testing.T) {
	l := Listing{Images: []string{"a.jpg"}}
	c := l.Clone()
	c.Images[0] = "b.jpg"
	assert.Equal(t, "a.jpg", l.Images[0])
}

func TestProfilePatchApply(t *testing.T) {
	u := User{FirstName: "Maria", LastName: "Santos", Bio: "hi"}
	bio := "Grad student"
	ProfilePatch{Bio: &bio}.Apply(&u)
	assert.Equal(t, "Maria Santos", u.FullName())
	assert.Equal(t, "Grad student", u.Bio)
}

func TestMessageCounterpart(t *testing.T) {
	m := Message{SenderID: 1, ReceiverID: 2}
	assert.Equal(t, uint(2), m.Counterpart(1))
	assert.Equal(t, uint(1), m.Counterpart(2))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{NewNotFoundError("Listing", 4), http.StatusNotFound},
		{NewValidationError("bad"), http.StatusBadRequest},
		{NewUnauthorizedError("no session"), http.StatusUnauthorized},
		{NewForbiddenError("not yours"), http.StatusForbidden},
		{NewInvalidTransitionError("Application", "declined", "accepted"), http.StatusConflict},
		{fmt.Errorf("store: %w", NewNotFoundError("User", 9)), http.StatusNotFound},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := NewInternalError(cause)
	require.ErrorIs(t, err, cause)
	assert.Equal(t, "Internal server error: disk full", err.Error())
	assert.Equal(t, CodeInternal, ErrorCode(fmt.Errorf("wrap: %w", err)))
	assert.Equal(t, "", ErrorCode(cause))
}
