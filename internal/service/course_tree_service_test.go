package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unireg/registrar-api/internal/graph"
	"github.com/unireg/registrar-api/internal/models"
	appErrors "github.com/unireg/registrar-api/pkg/errors"
)

type mockTreeCourseRepo struct {
	courses map[string]models.Course
	order   []string
	prereqs map[string][]string
	levels  map[string]*int
	terms   map[string][]string
}

func newMockTreeCourseRepo(courses ...models.Course) *mockTreeCourseRepo {
	repo := &mockTreeCourseRepo{
		courses: make(map[string]models.Course),
		prereqs: make(map[string][]string),
		levels:  make(map[string]*int),
		terms:   make(map[string][]string),
	}
	for _, course := range courses {
		repo.courses[course.CourseID] = course
		repo.order = append(repo.order, course.CourseID)
	}
	return repo
}

func (m *mockTreeCourseRepo) List(ctx context.Context) ([]models.Course, error) {
	out := make([]models.Course, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.courses[id])
	}
	return out, nil
}

func (m *mockTreeCourseRepo) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if course, ok := m.courses[id]; ok {
		return &course, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockTreeCourseRepo) UpdatePrerequisites(ctx context.Context, id string, prerequisites []string) error {
	course, ok := m.courses[id]
	if !ok {
		return sql.ErrNoRows
	}
	course.Prerequisites = pq.StringArray(prerequisites)
	m.courses[id] = course
	m.prereqs[id] = prerequisites
	return nil
}

func (m *mockTreeCourseRepo) UpdateLevel(ctx context.Context, id string, level *int) error {
	course, ok := m.courses[id]
	if !ok {
		return sql.ErrNoRows
	}
	course.Level = level
	m.courses[id] = course
	m.levels[id] = level
	return nil
}

func (m *mockTreeCourseRepo) UpdateSemesters(ctx context.Context, id string, semesters []string) error {
	course, ok := m.courses[id]
	if !ok {
		return sql.ErrNoRows
	}
	course.Semesters = pq.StringArray(semesters)
	m.courses[id] = course
	m.terms[id] = semesters
	return nil
}

type mockTreeDeptRepo struct{}

func (m *mockTreeDeptRepo) List(ctx context.Context) ([]models.Department, error) {
	return []models.Department{
		{DepartmentID: "CS", Name: "Computer Science"},
		{DepartmentID: "MATH", Name: "Mathematics"},
	}, nil
}

type treeFixture struct {
	service *CourseTreeService
	courses *mockTreeCourseRepo
	clock   clockwork.FakeClock
}

func newTreeFixture() *treeFixture {
	courses := newMockTreeCourseRepo(
		models.Course{CourseID: "CS101", Name: "Intro to CS", CreditHours: 3, DepartmentID: "CS", Semesters: pq.StringArray{"Fall"}},
		models.Course{CourseID: "CS201", Name: "Data Structures", CreditHours: 3, DepartmentID: "CS", Prerequisites: pq.StringArray{"CS101"}, Semesters: pq.StringArray{"Fall"}},
		models.Course{CourseID: "CS301", Name: "Algorithms", CreditHours: 4, DepartmentID: "CS", Prerequisites: pq.StringArray{"CS201"}},
		models.Course{CourseID: "MATH101", Name: "Calculus I", CreditHours: 4, DepartmentID: "MATH"},
	)
	clock := clockwork.NewFakeClock()
	cache := NewCacheService(nil, nil, time.Minute, nil, false)
	service := NewCourseTreeService(courses, &mockTreeDeptRepo{}, cache, NewMetricsService(), 10*time.Minute, clock, nil)
	return &treeFixture{service: service, courses: courses, clock: clock}
}

func TestBuildTree(t *testing.T) {
	f := newTreeFixture()

	tree, err := f.service.BuildTree(context.Background(), graph.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 4, tree.TotalCourses)
	require.Len(t, tree.Departments, 2)

	byDept := make(map[string]DepartmentTree)
	for _, dept := range tree.Departments {
		byDept[dept.DepartmentID] = dept
	}
	assert.Equal(t, "Computer Science", byDept["CS"].DepartmentName)
	require.Len(t, byDept["CS"].Courses, 1)
	root := byDept["CS"].Courses[0]
	assert.Equal(t, "CS101", root.CourseID)
	require.Len(t, root.Children, 1)
	assert.Equal(t, "CS201", root.Children[0].CourseID)
}

func TestBuildTreeSnapshotMemoized(t *testing.T) {
	f := newTreeFixture()

	first, err := f.service.BuildTree(context.Background(), graph.Filter{})
	require.NoError(t, err)
	require.Equal(t, 4, first.TotalCourses)

	f.courses.order = append(f.courses.order, "CS999")
	f.courses.courses["CS999"] = models.Course{CourseID: "CS999", Name: "Seminar", CreditHours: 1, DepartmentID: "CS"}

	second, err := f.service.BuildTree(context.Background(), graph.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 4, second.TotalCourses)

	f.clock.Advance(11 * time.Minute)
	third, err := f.service.BuildTree(context.Background(), graph.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 5, third.TotalCourses)
}

func TestGetCoursePrerequisites(t *testing.T) {
	f := newTreeFixture()

	linkage, err := f.service.GetCoursePrerequisites(context.Background(), "CS201")
	require.NoError(t, err)
	require.Len(t, linkage.Prerequisites, 1)
	assert.Equal(t, "CS101", linkage.Prerequisites[0].CourseID)
	assert.Equal(t, "Computer Science", linkage.Prerequisites[0].DepartmentName)
	require.Len(t, linkage.Subsequents, 1)
	assert.Equal(t, "CS301", linkage.Subsequents[0].CourseID)

	_, err = f.service.GetCoursePrerequisites(context.Background(), "NOPE")
	assertCode(t, err, appErrors.ErrNotFound.Code)
}

func TestValidatePrerequisiteChain(t *testing.T) {
	f := newTreeFixture()

	verdict, err := f.service.ValidatePrerequisiteChain(context.Background(), "CS301")
	require.NoError(t, err)
	assert.True(t, verdict.Valid)
	assert.False(t, verdict.HasCycle)
}

func TestValidatePrerequisiteChainCycle(t *testing.T) {
	courses := newMockTreeCourseRepo(
		models.Course{CourseID: "A", Name: "A", CreditHours: 3, DepartmentID: "CS", Prerequisites: pq.StringArray{"B"}},
		models.Course{CourseID: "B", Name: "B", CreditHours: 3, DepartmentID: "CS", Prerequisites: pq.StringArray{"A"}},
	)
	cache := NewCacheService(nil, nil, time.Minute, nil, false)
	service := NewCourseTreeService(courses, &mockTreeDeptRepo{}, cache, NewMetricsService(), 10*time.Minute, clockwork.NewFakeClock(), nil)

	verdict, err := service.ValidatePrerequisiteChain(context.Background(), "A")
	require.NoError(t, err)
	assert.False(t, verdict.Valid)
	assert.True(t, verdict.HasCycle)
}

func TestAddPrerequisite(t *testing.T) {
	f := newTreeFixture()

	require.NoError(t, f.service.AddPrerequisite(context.Background(), "CS301", "MATH101"))
	assert.Equal(t, []string{"CS201", "MATH101"}, f.courses.prereqs["CS301"])

	// The snapshot refreshes immediately after a mutation.
	linkage, err := f.service.GetCoursePrerequisites(context.Background(), "CS301")
	require.NoError(t, err)
	assert.Len(t, linkage.Prerequisites, 2)
}

func TestAddPrerequisiteRejectsCircular(t *testing.T) {
	f := newTreeFixture()

	// CS301 transitively requires CS101, so CS101 -> CS301 closes a loop.
	err := f.service.AddPrerequisite(context.Background(), "CS101", "CS301")
	assertCode(t, err, appErrors.ErrValidation.Code)

	err = f.service.AddPrerequisite(context.Background(), "CS101", "CS101")
	assertCode(t, err, appErrors.ErrValidation.Code)
}

func TestAddPrerequisiteDuplicate(t *testing.T) {
	f := newTreeFixture()

	err := f.service.AddPrerequisite(context.Background(), "CS201", "CS101")
	assertCode(t, err, appErrors.ErrConflict.Code)
}

func TestRemovePrerequisite(t *testing.T) {
	f := newTreeFixture()

	require.NoError(t, f.service.RemovePrerequisite(context.Background(), "CS201", "CS101"))
	assert.Equal(t, []string{}, f.courses.prereqs["CS201"])

	err := f.service.RemovePrerequisite(context.Background(), "CS201", "CS101")
	assertCode(t, err, appErrors.ErrNotFound.Code)
}

func TestUpdateLevel(t *testing.T) {
	f := newTreeFixture()

	level := 3
	require.NoError(t, f.service.UpdateLevel(context.Background(), "CS301", UpdateLevelRequest{Level: &level}))
	require.NotNil(t, f.courses.levels["CS301"])
	assert.Equal(t, 3, *f.courses.levels["CS301"])

	bad := 7
	err := f.service.UpdateLevel(context.Background(), "CS301", UpdateLevelRequest{Level: &bad})
	assertCode(t, err, appErrors.ErrValidation.Code)

	require.NoError(t, f.service.UpdateLevel(context.Background(), "CS301", UpdateLevelRequest{}))
	assert.Nil(t, f.courses.levels["CS301"])
}

func TestUpdateSemesters(t *testing.T) {
	f := newTreeFixture()

	req := UpdateSemestersRequest{Semesters: []models.Semester{"Fall", "Spring", "Fall"}}
	require.NoError(t, f.service.UpdateSemesters(context.Background(), "CS101", req))
	assert.Equal(t, []string{"Fall", "Spring"}, f.courses.terms["CS101"])

	err := f.service.UpdateSemesters(context.Background(), "CS101", UpdateSemestersRequest{Semesters: []models.Semester{"Winter"}})
	assertCode(t, err, appErrors.ErrValidation.Code)

	err = f.service.UpdateSemesters(context.Background(), "CS101", UpdateSemestersRequest{})
	assertCode(t, err, appErrors.ErrValidation.Code)
}

func TestGetSemesters(t *testing.T) {
	f := newTreeFixture()

	semesters, err := f.service.GetSemesters(context.Background(), "CS101")
	require.NoError(t, err)
	assert.Equal(t, []models.Semester{models.SemesterFall}, semesters)

	_, err = f.service.GetSemesters(context.Background(), "NOPE")
	assertCode(t, err, appErrors.ErrNotFound.Code)
}

func TestCatalogIDs(t *testing.T) {
	f := newTreeFixture()

	ids, err := f.service.CatalogIDs(context.Background())
	require.NoError(t, err)
	assert.Len(t, ids, 4)
	assert.Contains(t, ids, "MATH101")
}
