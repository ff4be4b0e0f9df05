package service

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/edustack/edustack-api/internal/apperr"
	"github.com/edustack/edustack-api/internal/dto"
	"github.com/edustack/edustack-api/internal/models"
	"github.com/edustack/edustack-api/internal/repository"
)

func newStudentFixture(t *testing.T) (StudentService, *auditRecorder) {
	t.Helper()
	recorder := &auditRecorder{}
	svc := NewStudentService(setupTestDB(t), setupTestCache(t), recorder, zerolog.Nop())
	return svc, recorder
}

func strPtr(s string) *string { return &s }

func TestStudentLifecycle(t *testing.T) {
	svc, recorder := newStudentFixture(t)

	created, err := svc.Create(context.Background(), 1, 10, dto.StudentCreateRequest{
		FirstName:   "Ada",
		LastName:    "Lovelace",
		AdmissionNo: "A-001",
		Grade:       "7",
	}, RequestMeta{IP: "10.0.0.1"})
	require.NoError(t, err)
	require.Equal(t, models.StudentStatusEnrolled, created.Status)

	got, err := svc.Get(context.Background(), 1, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Ada", got.FirstName)

	updated, err := svc.Update(context.Background(), 1, 10, created.ID, dto.StudentUpdateRequest{
		Grade:  strPtr("8"),
		Status: strPtr(models.StudentStatusGraduated),
	}, RequestMeta{})
	require.NoError(t, err)
	require.Equal(t, "8", updated.Grade)
	require.Equal(t, models.StudentStatusGraduated, updated.Status)

	require.NoError(t, svc.Delete(context.Background(), 1, 10, created.ID, RequestMeta{}))

	// Soft delete keeps the row loadable but flagged.
	got, err = svc.Get(context.Background(), 1, created.ID)
	require.NoError(t, err)
	require.Equal(t, models.StudentStatusDeleted, got.Status)

	require.Equal(t, []string{
		models.AuditActionCreate,
		models.AuditActionUpdate,
		models.AuditActionSoftDelete,
	}, recorder.actions())
}

func TestStudentGetCrossTenantIsNotFound(t *testing.T) {
	svc, _ := newStudentFixture(t)

	created, err := svc.Create(context.Background(), 1, 10, dto.StudentCreateRequest{
		FirstName:   "Ada",
		LastName:    "Lovelace",
		AdmissionNo: "A-001",
	}, RequestMeta{})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), 2, created.ID)
	appErr := apperr.From(err)
	require.Equal(t, "STUDENT_NOT_FOUND", appErr.Code)
	require.Equal(t, 404, appErr.Status)

	_, err = svc.Update(context.Background(), 2, 10, created.ID, dto.StudentUpdateRequest{Grade: strPtr("9")}, RequestMeta{})
	require.Equal(t, "STUDENT_NOT_FOUND", apperr.From(err).Code)

	err = svc.Delete(context.Background(), 2, 10, created.ID, RequestMeta{})
	require.Equal(t, "STUDENT_NOT_FOUND", apperr.From(err).Code)
}

func TestStudentGetServesFreshDataAfterUpdate(t *testing.T) {
	svc, _ := newStudentFixture(t)

	created, err := svc.Create(context.Background(), 1, 10, dto.StudentCreateRequest{
		FirstName:   "Ada",
		LastName:    "Lovelace",
		AdmissionNo: "A-001",
		Grade:       "7",
	}, RequestMeta{})
	require.NoError(t, err)

	// Prime the cache, then mutate. The update must invalidate the entry.
	_, err = svc.Get(context.Background(), 1, created.ID)
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), 1, 10, created.ID, dto.StudentUpdateRequest{Grade: strPtr("8")}, RequestMeta{})
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), 1, created.ID)
	require.NoError(t, err)
	require.Equal(t, "8", got.Grade)
}

func TestStudentListFiltersAndPaginates(t *testing.T) {
	svc, _ := newStudentFixture(t)

	for i := 0; i < 3; i++ {
		_, err := svc.Create(context.Background(), 1, 10, dto.StudentCreateRequest{
			FirstName:   "Student",
			LastName:    string(rune('A' + i)),
			AdmissionNo: string(rune('A'+i)) + "-001",
			Grade:       "7",
		}, RequestMeta{})
		require.NoError(t, err)
	}
	_, err := svc.Create(context.Background(), 1, 10, dto.StudentCreateRequest{
		FirstName:   "Other",
		LastName:    "Grade",
		AdmissionNo: "X-001",
		Grade:       "8",
	}, RequestMeta{})
	require.NoError(t, err)

	page, err := svc.List(context.Background(), 1, repository.StudentFilter{Grade: "7"}, 1, 2)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.EqualValues(t, 3, page.Pagination.TotalItems)
	require.Equal(t, 2, page.Pagination.TotalPages)
	require.True(t, page.Pagination.HasNext)
}
