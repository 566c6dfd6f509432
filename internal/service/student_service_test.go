package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/eduworld-api/internal/dto"
	"github.com/noah-isme/eduworld-api/internal/models"
	"github.com/noah-isme/eduworld-api/internal/repository"
)

func newTestStudentService(db *gorm.DB) StudentService {
	return NewStudentService(
		repository.NewStudentRepository(db),
		repository.NewClassRepository(db),
		repository.NewSubjectRepository(db),
		validator.New(),
		testLogger(),
	)
}

func TestStudentServiceCreateWithEnrollment(t *testing.T) {
	db := newTestDB(t)
	fx := seedCatalog(t, db)
	svc := newTestStudentService(db)
	ctx := context.Background()

	created, err := svc.Create(ctx, dto.StudentCreateRequest{
		Username: "Grace",
		Email:    strPtr("Grace@Example.com"),
		ClassIDs: []uint{fx.class.ID, fx.class.ID},
	})
	require.NoError(t, err)
	require.Equal(t, "grace", created.Username)
	require.Equal(t, "grace@example.com", *created.Email)
	require.Len(t, created.EnrolledClasses, 1)

	_, err = svc.Create(ctx, dto.StudentCreateRequest{Username: "other", Email: strPtr("grace@example.com")})
	require.ErrorIs(t, err, ErrStudentIdentityTaken)

	_, err = svc.Create(ctx, dto.StudentCreateRequest{Username: "nobody", ClassIDs: []uint{9999}})
	require.ErrorIs(t, err, ErrClassNotFound)

	_, err = svc.Create(ctx, dto.StudentCreateRequest{Username: "nobody", SubjectIDs: []uint{9999}})
	require.ErrorIs(t, err, ErrSubjectNotFound)

	var classCount int64
	require.NoError(t, db.Model(&models.Class{}).Count(&classCount).Error)
	require.Equal(t, int64(1), classCount)
}

func TestStudentServiceEnrolledClassesHonourExplicitSubjects(t *testing.T) {
	db := newTestDB(t)
	fx := seedCatalog(t, db)
	extra := models.Subject{ClassID: fx.class.ID, Name: "S2"}
	require.NoError(t, db.Create(&extra).Error)
	svc := newTestStudentService(db)
	ctx := context.Background()

	classes, err := svc.EnrolledClasses(ctx, fx.student.ID)
	require.NoError(t, err)
	require.Len(t, classes, 1)
	require.Len(t, classes[0].Subjects, 2)

	subjectIDs := []uint{extra.ID}
	_, err = svc.Update(ctx, fx.student.ID, dto.StudentUpdateRequest{SubjectIDs: &subjectIDs})
	require.NoError(t, err)

	classes, err = svc.EnrolledClasses(ctx, fx.student.ID)
	require.NoError(t, err)
	require.Len(t, classes[0].Subjects, 1)
	require.Equal(t, "S2", classes[0].Subjects[0].Name)
}

func TestStudentServiceProfileAndDelete(t *testing.T) {
	db := newTestDB(t)
	fx := seedCatalog(t, db)
	svc := newTestStudentService(db)
	ctx := context.Background()

	profile, err := svc.UpdateProfile(ctx, fx.student.ID, dto.ProfileUpdateRequest{Name: strPtr("Ada L."), SchoolName: strPtr("North High")})
	require.NoError(t, err)
	require.Equal(t, "Ada L.", profile.Name)
	require.Equal(t, "North High", profile.SchoolName)
	require.Len(t, profile.EnrolledClasses, 1)

	_, err = svc.UpdateProfile(ctx, 9999, dto.ProfileUpdateRequest{})
	require.ErrorIs(t, err, ErrStudentNotFound)

	require.NoError(t, svc.Delete(ctx, fx.student.ID))
	require.ErrorIs(t, svc.Delete(ctx, fx.student.ID), ErrStudentNotFound)

	students, err := svc.List(ctx)
	require.NoError(t, err)
	require.Empty(t, students)
}
