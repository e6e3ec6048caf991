// Package logger - Test audit log lấy đúng danh tính người dùng từ request.
package logger

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogAction_GhiUserIDTuLocals(t *testing.T) {
	hook := test.NewLocal(GetAuditLogger())
	defer hook.Reset()

	// Auth middleware lưu danh tính vào Locals với key "user_id"
	const userID = "64f0000000000000000000a1"

	app := fiber.New()
	app.Get("/audit", func(c fiber.Ctx) error {
		c.Locals("user_id", userID)
		LogClaim("proj1", "EDITOR", c, nil)
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/audit", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.Len(t, hook.Entries, 1)
	entry := hook.LastEntry()
	assert.Equal(t, "project_claim", entry.Data["action"])
	assert.Equal(t, userID, entry.Data["user_id"], "audit log phải gắn được user thực hiện hành động")

	details, ok := entry.Data["details"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "proj1", details["project_id"])
	assert.Equal(t, "EDITOR", details["role"])
}

func TestLogAction_KhongCoUserIDVanGhiDuocLog(t *testing.T) {
	hook := test.NewLocal(GetAuditLogger())
	defer hook.Reset()

	app := fiber.New()
	app.Get("/audit", func(c fiber.Ctx) error {
		LogCRUD("insert", "Project", "p1", c, nil)
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/audit", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.Len(t, hook.Entries, 1)
	assert.Equal(t, "", hook.LastEntry().Data["user_id"])
}
