package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"academy-platform/internal/domain"
	"academy-platform/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func seedGroup(dealerID uuid.UUID, name string, students int) *domain.Group {
	g := &domain.Group{
		ID:          uuid.New(),
		DealerID:    dealerID,
		Name:        name,
		TrainerName: "Coach Smirnov",
		Schedule:    "Tue/Thu 17:00",
		IsActive:    true,
	}
	for i := 0; i < students; i++ {
		g.StudentIDs = append(g.StudentIDs, uuid.New())
	}
	return g
}

func TestAcademyService_CopyGroupDefaultsName(t *testing.T) {
	dealerID := uuid.New()
	source := seedGroup(dealerID, "U10", 3)
	svc := NewAcademyService(newMockGroupRepository(source), newMockAttendanceRepository(), zap.NewNop())

	copied, err := svc.CopyGroup(context.Background(), mustScope(dealerID), source.ID, "  ")
	require.NoError(t, err)
	assert.Equal(t, "U10 (copy)", copied.Name)
	assert.NotEqual(t, source.ID, copied.ID)
	assert.Equal(t, source.TrainerName, copied.TrainerName)
	assert.ElementsMatch(t, source.StudentIDs, copied.StudentIDs)

	named, err := svc.CopyGroup(context.Background(), mustScope(dealerID), source.ID, "U10 autumn")
	require.NoError(t, err)
	assert.Equal(t, "U10 autumn", named.Name)
}

func TestAcademyService_CopyForeignGroup(t *testing.T) {
	source := seedGroup(uuid.New(), "U10", 1)
	svc := NewAcademyService(newMockGroupRepository(source), newMockAttendanceRepository(), zap.NewNop())

	_, err := svc.CopyGroup(context.Background(), mustScope(uuid.New()), source.ID, "")
	assert.ErrorIs(t, err, ErrGroupNotFound)
}

func TestAcademyService_MarkAttendanceValidatesRoster(t *testing.T) {
	dealerID := uuid.New()
	group := seedGroup(dealerID, "U12", 2)
	svc := NewAcademyService(newMockGroupRepository(group), newMockAttendanceRepository(), zap.NewNop())

	_, err := svc.MarkAttendance(context.Background(), mustScope(dealerID), MarkAttendanceInput{
		GroupID: group.ID,
		Date:    time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		Marks: []AttendanceMark{
			{StudentID: uuid.New(), Status: domain.AttendancePresent},
			{StudentID: group.StudentIDs[0], Status: "sleeping"},
			{StudentID: group.StudentIDs[1], Status: domain.AttendanceLate},
			{StudentID: group.StudentIDs[1], Status: domain.AttendanceAbsent},
		},
	})

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	fields := map[string]bool{}
	for _, f := range verr.Fields {
		fields[f.Field] = true
	}
	assert.True(t, fields["records[0].studentId"])
	assert.True(t, fields["records[1].status"])
	assert.True(t, fields["records[3].studentId"])
	assert.False(t, fields["records[2].studentId"])
}

func TestAcademyService_MarkAttendanceUpserts(t *testing.T) {
	dealerID := uuid.New()
	group := seedGroup(dealerID, "U12", 2)
	svc := NewAcademyService(newMockGroupRepository(group), newMockAttendanceRepository(), zap.NewNop())
	scope := mustScope(dealerID)
	day := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	first, err := svc.MarkAttendance(context.Background(), scope, MarkAttendanceInput{
		GroupID: group.ID,
		Date:    day,
		Marks:   []AttendanceMark{{StudentID: group.StudentIDs[0], Status: domain.AttendancePresent}},
	})
	require.NoError(t, err)

	second, err := svc.MarkAttendance(context.Background(), scope, MarkAttendanceInput{
		GroupID: group.ID,
		Date:    day,
		Marks: []AttendanceMark{
			{StudentID: group.StudentIDs[0], Status: domain.AttendanceExcused},
			{StudentID: group.StudentIDs[1], Status: domain.AttendanceAbsent},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, second.Records, 2)

	stored, err := svc.GetAttendance(context.Background(), scope, group.ID, day)
	require.NoError(t, err)
	assert.Equal(t, domain.AttendanceExcused, stored.Records[0].Status)

	_, err = svc.GetAttendance(context.Background(), scope, group.ID, day.AddDate(0, 0, 1))
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestAcademyService_MarkAttendanceUnknownGroup(t *testing.T) {
	svc := NewAcademyService(newMockGroupRepository(), newMockAttendanceRepository(), zap.NewNop())

	_, err := svc.MarkAttendance(context.Background(), mustScope(uuid.New()), MarkAttendanceInput{GroupID: uuid.New(), Date: time.Now()})
	assert.ErrorIs(t, err, ErrGroupNotFound)
}

func TestCatalogService_StorefrontListsActiveProductsWithImages(t *testing.T) {
	dealerID := uuid.New()
	products := newMockProductRepository()
	active := products.addProduct(dealerID, "Kit", 40)
	active.Images = []byte(`["a.jpg","", "b.jpg"]`)
	hidden := products.addProduct(dealerID, "Hidden", 40)
	hidden.IsActive = false
	broken := products.addProduct(dealerID, "Broken", 40)
	broken.Images = []byte(`{"oops":true}`)
	products.addVariant(active.ID, "M", 3, nil)

	svc := NewCatalogService(&mockCategoryRepository{}, products)

	list, total, err := svc.ListStorefrontProducts(context.Background(), mustScope(dealerID), repository.ProductFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	byName := map[string]CatalogProduct{}
	for _, p := range list {
		byName[p.Name] = p
	}
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, byName["Kit"].ImageURLs)
	assert.Len(t, byName["Kit"].Variants, 1)
	assert.Equal(t, []string{}, byName["Broken"].ImageURLs)
	assert.NotNil(t, byName["Broken"].Variants)
	assert.NotContains(t, byName, "Hidden")
}

func TestCatalogService_ListCategoriesScoped(t *testing.T) {
	mine := uuid.New()
	repo := &mockCategoryRepository{categories: []*domain.Category{
		{ID: uuid.New(), DealerID: mine, Name: "Kits"},
		{ID: uuid.New(), DealerID: uuid.New(), Name: "Other"},
	}}
	svc := NewCatalogService(repo, newMockProductRepository())

	list, err := svc.ListCategories(context.Background(), mustScope(mine))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Kits", list[0].Name)
}
