package reservations

import (
	"context"
	"docbook-service/internal/pkg/constvars"
	"docbook-service/internal/pkg/exceptions"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestMapTransactionError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantKind   exceptions.Kind
		wantDevMsg string
	}{
		{
			name:       "key already taken",
			err:        errKeyTaken,
			wantKind:   exceptions.KindConflict,
			wantDevMsg: constvars.ErrDevReservationAlreadyExists,
		},
		{
			name:       "wrapped key already taken",
			err:        fmt.Errorf("commit: %w", errKeyTaken),
			wantKind:   exceptions.KindConflict,
			wantDevMsg: constvars.ErrDevReservationAlreadyExists,
		},
		{
			name:       "duplicate key on insert",
			err:        mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}},
			wantKind:   exceptions.KindConflict,
			wantDevMsg: constvars.ErrDevReservationAlreadyExists,
		},
		{
			name:       "deadline exceeded",
			err:        context.DeadlineExceeded,
			wantKind:   exceptions.KindUnavailable,
			wantDevMsg: constvars.ErrDevStoreUnavailable,
		},
		{
			name:       "network error",
			err:        mongo.CommandError{Code: 6, Message: "connection reset", Labels: []string{"NetworkError"}},
			wantKind:   exceptions.KindUnavailable,
			wantDevMsg: constvars.ErrDevStoreUnavailable,
		},
		{
			name:       "any other failure",
			err:        errors.New("write conflict"),
			wantKind:   exceptions.KindUnavailable,
			wantDevMsg: constvars.ErrDevMongoDBTransaction,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapTransactionError(tt.err)
			assert.Equal(t, tt.wantKind, exceptions.KindOf(err))

			var customErr *exceptions.CustomError
			if assert.ErrorAs(t, err, &customErr) {
				assert.Contains(t, customErr.DevMessage, tt.wantDevMsg)
			}
		})
	}

	t.Run("success", func(t *testing.T) {
		assert.NoError(t, mapTransactionError(nil))
	})
}
