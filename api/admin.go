package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"

	"github.com/quorumvault/custodian/internal/tasks"
)

type registryEntryRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

type priceRegisterRequest struct {
	Asset    string `json:"asset"`
	Price    string `json:"price"`
	Decimals uint8  `json:"decimals"`
}

// SetRegistryEntry installs a name-to-address entry in the account registry.
func (s *Server) SetRegistryEntry(c echo.Context) error {
	var req registryEntryRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("fail to parse request, err: %w", err)
	}
	if req.Name == "" {
		return errJSON(c, fmt.Errorf("name is required"))
	}
	if err := s.custody.SetRegistryEntry(req.Name, req.Address); err != nil {
		return errJSON(c, err)
	}
	return c.NoContent(http.StatusOK)
}

// RegisterPrice installs a USD price entry for an asset.
func (s *Server) RegisterPrice(c echo.Context) error {
	var req priceRegisterRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("fail to parse request, err: %w", err)
	}
	if req.Price == "" {
		return errJSON(c, fmt.Errorf("price is required"))
	}
	if err := s.custody.RegisterPrice(req.Asset, req.Price, req.Decimals); err != nil {
		return errJSON(c, err)
	}
	return c.NoContent(http.StatusOK)
}

// ArchiveStatement enqueues a statement archival run for a wallet.
func (s *Server) ArchiveStatement(c echo.Context) error {
	task, err := tasks.NewStatementArchive(c.Param("address"))
	if err != nil {
		return fmt.Errorf("fail to build archive task, err: %w", err)
	}
	ti, err := s.client.Enqueue(task,
		asynq.MaxRetry(3),
		asynq.Timeout(5*time.Minute),
		asynq.Retention(10*time.Minute),
		asynq.Queue(tasks.QUEUE_NAME))
	if err != nil {
		return fmt.Errorf("fail to enqueue task, err: %w", err)
	}
	return c.JSON(http.StatusOK, map[string]string{"task_id": ti.ID})
}

// GetTaskStatus reports the state of a queued worker task.
func (s *Server) GetTaskStatus(c echo.Context) error {
	ti, err := s.inspector.GetTaskInfo(tasks.QUEUE_NAME, c.Param("taskId"))
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "task not found"})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"task_id": ti.ID,
		"state":   ti.State.String(),
	})
}

// GetStatement downloads an archived statement by object name.
func (s *Server) GetStatement(c echo.Context) error {
	if s.archive == nil {
		return errJSON(c, fmt.Errorf("statement archive storage is not configured"))
	}
	name := c.Param("name")
	exists, err := s.archive.StatementExists(c.Request().Context(), name)
	if err != nil {
		return fmt.Errorf("fail to check statement, err: %w", err)
	}
	if !exists {
		return c.NoContent(http.StatusNotFound)
	}
	content, err := s.archive.GetStatement(c.Request().Context(), name)
	if err != nil {
		return fmt.Errorf("fail to get statement, err: %w", err)
	}
	return c.JSONBlob(http.StatusOK, content)
}
