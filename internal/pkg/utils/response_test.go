package utils

import (
	"docbook-service/internal/pkg/constvars"
	"docbook-service/internal/pkg/exceptions"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestBuildErrorResponseRetryAfter(t *testing.T) {
	tests := []struct {
		name       string
		preset     string
		err        error
		wantStatus int
		wantHeader string
	}{
		{
			name:       "Retry After From Error",
			err:        exceptions.ErrBookingRateLimited(nil).WithRetryAfter(17),
			wantStatus: http.StatusTooManyRequests,
			wantHeader: "17",
		},
		{
			name:       "Default Retry After",
			err:        exceptions.ErrTooManyRequests(nil),
			wantStatus: http.StatusTooManyRequests,
			wantHeader: "60",
		},
		{
			name:       "Header Already Set Is Kept",
			preset:     "5",
			err:        exceptions.ErrTooManyRequests(nil),
			wantStatus: http.StatusTooManyRequests,
			wantHeader: "5",
		},
		{
			name:       "No Header For Other Errors",
			err:        exceptions.ErrSlotAlreadyBooked(nil),
			wantStatus: http.StatusConflict,
			wantHeader: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			if tt.preset != "" {
				rec.Header().Set(constvars.HeaderRetryAfter, tt.preset)
			}

			BuildErrorResponse(zap.NewNop(), rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantHeader, rec.Header().Get(constvars.HeaderRetryAfter))
		})
	}
}
