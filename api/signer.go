package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/quorumvault/custodian/internal/directory"
)

func lookupScope(c echo.Context) directory.Scope {
	switch c.QueryParam("scope") {
	case "", "all":
		return directory.ScopeAll
	case "owned":
		return directory.ScopeOwned
	case "associated":
		return directory.ScopeAssociated
	default:
		return directory.Scope(c.QueryParam("scope"))
	}
}

func (s *Server) GetSignerWallets(c echo.Context) error {
	offset, limit := pageParams(c)
	wallets, err := s.custody.SignerWallets(c.Param("address"), lookupScope(c), offset, limit)
	if err != nil {
		return errJSON(c, err)
	}
	return c.JSON(http.StatusOK, wallets)
}

func (s *Server) GetSignerWalletCount(c echo.Context) error {
	count, err := s.custody.SignerWalletCount(c.Param("address"), lookupScope(c))
	if err != nil {
		return errJSON(c, err)
	}
	return c.JSON(http.StatusOK, map[string]int{"count": count})
}

// GetSignerWalletDetails serves detail views of the signer's wallets, newest
// first.
func (s *Server) GetSignerWalletDetails(c echo.Context) error {
	offset, limit := pageParams(c)
	details, err := s.custody.SignerWalletDetails(c.Param("address"), offset, limit)
	if err != nil {
		return errJSON(c, err)
	}
	return c.JSON(http.StatusOK, details)
}
