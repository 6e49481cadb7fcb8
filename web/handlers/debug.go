package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/peptidestore/storage"
)

// GetSQLLogs returns the recently executed storage queries
func GetSQLLogs(c *fiber.Ctx) error {
	queries := storage.SQLLogger.GetQueries()
	return c.JSON(fiber.Map{
		"queries": queries,
		"count":   len(queries),
	})
}

// ClearSQLLogs clears the query log
func ClearSQLLogs(c *fiber.Ctx) error {
	storage.SQLLogger.Clear()
	return c.JSON(fiber.Map{"success": true})
}
