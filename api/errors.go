package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/quorumvault/custodian/internal/directory"
	"github.com/quorumvault/custodian/internal/oracle"
	"github.com/quorumvault/custodian/internal/registry"
	"github.com/quorumvault/custodian/internal/wallet"
)

// errStatus maps the domain sentinels onto HTTP statuses. Anything
// unrecognized is treated as a bad request so a client mistake never
// surfaces as a 500.
func errStatus(err error) int {
	switch {
	case errors.Is(err, directory.ErrWalletNotFound),
		errors.Is(err, wallet.ErrTransactionNotFound),
		errors.Is(err, wallet.ErrTokenNotFound),
		errors.Is(err, registry.ErrEntryNotFound),
		errors.Is(err, oracle.ErrFeedNotRegistered),
		errors.Is(err, oracle.ErrNativeFeedNotRegistered):
		return http.StatusNotFound
	case errors.Is(err, wallet.ErrNotSigner),
		errors.Is(err, wallet.ErrInvalidPassword),
		errors.Is(err, registry.ErrNotOwner),
		errors.Is(err, oracle.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, wallet.ErrTransactionExists),
		errors.Is(err, wallet.ErrTransactionExecuted),
		errors.Is(err, wallet.ErrTransactionCancelled),
		errors.Is(err, wallet.ErrAlreadyApproved),
		errors.Is(err, wallet.ErrNotApproved),
		errors.Is(err, wallet.ErrLacksApprovals),
		errors.Is(err, wallet.ErrTokenAlreadyAdded),
		errors.Is(err, wallet.ErrReentrantCall),
		errors.Is(err, directory.ErrMaxOwnedWallets):
		return http.StatusConflict
	case errors.Is(err, wallet.ErrInsufficientBalance),
		errors.Is(err, wallet.ErrInsufficientUnlockedBalance):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

func errJSON(c echo.Context, err error) error {
	return c.JSON(errStatus(err), map[string]string{"error": err.Error()})
}
