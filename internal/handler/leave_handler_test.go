package handler_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/edustack/edustack-api/internal/dto"
	"github.com/edustack/edustack-api/internal/models"
)

func submitTestLeave(t *testing.T, env *testEnv, tenantID, requesterID uint) dto.LeaveRequestResponse {
	t.Helper()
	from := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	resp := env.do(t, testRequest{
		method: http.MethodPost,
		path:   "/api/v1/leave-requests",
		body: map[string]interface{}{
			"from_date": from,
			"to_date":   from.AddDate(0, 0, 2),
			"reason":    "family event",
		},
		tenant: tenantID,
		user:   requesterID,
		role:   models.RoleStudent,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body struct {
		Data dto.LeaveRequestResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	return body.Data
}

func TestLeaveSubmitAndReviewFlow(t *testing.T) {
	env := newTestEnv(t)
	created := submitTestLeave(t, env, 1, 20)
	require.Equal(t, models.LeaveStatusPending, created.Status)

	// Students cannot review.
	resp := env.do(t, testRequest{
		method: http.MethodPost,
		path:   "/api/v1/leave-requests/1/review",
		body:   map[string]string{"decision": "approved"},
		tenant: 1,
		user:   20,
		role:   models.RoleStudent,
	})
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = env.do(t, testRequest{
		method: http.MethodPost,
		path:   "/api/v1/leave-requests/1/review",
		body:   map[string]string{"decision": "approved", "note": "enjoy"},
		tenant: 1,
		user:   30,
		role:   models.RoleTeacher,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Data dto.LeaveRequestResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.Equal(t, models.LeaveStatusApproved, body.Data.Status)

	// A second review conflicts.
	resp = env.do(t, testRequest{
		method: http.MethodPost,
		path:   "/api/v1/leave-requests/1/review",
		body:   map[string]string{"decision": "rejected"},
		tenant: 1,
		user:   30,
		role:   models.RoleTeacher,
	})
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
	code, _ := errorBody(t, resp)
	require.Equal(t, "LEAVE_ALREADY_REVIEWED", code)
}

func TestLeaveReviewRejectsUnknownDecision(t *testing.T) {
	env := newTestEnv(t)
	submitTestLeave(t, env, 1, 20)

	resp := env.do(t, testRequest{
		method: http.MethodPost,
		path:   "/api/v1/leave-requests/1/review",
		body:   map[string]string{"decision": "maybe"},
		tenant: 1,
		user:   30,
		role:   models.RoleAdmin,
	})
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestLeaveListScopedToRequesterForStudents(t *testing.T) {
	env := newTestEnv(t)
	submitTestLeave(t, env, 1, 20)
	submitTestLeave(t, env, 1, 21)

	resp := env.do(t, testRequest{
		method: http.MethodGet,
		path:   "/api/v1/leave-requests",
		tenant: 1,
		user:   20,
		role:   models.RoleStudent,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Data dto.LeaveRequestListResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.Len(t, body.Data.Items, 1)
	require.EqualValues(t, 20, body.Data.Items[0].RequesterID)

	// Staff see the whole tenant.
	resp = env.do(t, testRequest{
		method: http.MethodGet,
		path:   "/api/v1/leave-requests",
		tenant: 1,
		user:   30,
		role:   models.RoleTeacher,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decodeResponse(t, resp, &body)
	require.Len(t, body.Data.Items, 2)
}

func TestLeaveGetHidesOthersFromStudents(t *testing.T) {
	env := newTestEnv(t)
	submitTestLeave(t, env, 1, 20)

	resp := env.do(t, testRequest{
		method: http.MethodGet,
		path:   "/api/v1/leave-requests/1",
		tenant: 1,
		user:   99,
		role:   models.RoleStudent,
	})
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = env.do(t, testRequest{
		method: http.MethodGet,
		path:   "/api/v1/leave-requests/1",
		tenant: 1,
		user:   20,
		role:   models.RoleStudent,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}
