package sqlite

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/bitcoin-sv/chainstore/internal/chainstore/store"
)

var conflictMessages = []string{
	"database is locked",
	"database table is locked",
	"SQLITE_BUSY",
	"UNIQUE constraint failed",
}

// classifyError marks lock timeouts and unique violations with store.ErrConflict.
func classifyError(err error) error {
	if errors.Is(err, store.ErrConflict) {
		return err
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.Join(store.ErrConflict, err)
	}

	msg := err.Error()
	for _, m := range conflictMessages {
		if strings.Contains(msg, m) {
			return errors.Join(store.ErrConflict, err)
		}
	}

	return err
}

func withContextErr(ctx context.Context, err error) error {
	ctxErr := ctx.Err()
	if ctxErr == nil || errors.Is(err, ctxErr) {
		return err
	}

	return errors.Join(ctxErr, err)
}
