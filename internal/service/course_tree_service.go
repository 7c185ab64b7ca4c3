package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/unireg/registrar-api/internal/graph"
	"github.com/unireg/registrar-api/internal/memo"
	"github.com/unireg/registrar-api/internal/models"
	appErrors "github.com/unireg/registrar-api/pkg/errors"
)

type courseRepository interface {
	List(ctx context.Context) ([]models.Course, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	UpdatePrerequisites(ctx context.Context, id string, prerequisites []string) error
	UpdateLevel(ctx context.Context, id string, level *int) error
	UpdateSemesters(ctx context.Context, id string, semesters []string) error
}

type departmentReader interface {
	List(ctx context.Context) ([]models.Department, error)
}

// TreeNode is one course in a rendered dependency tree.
type TreeNode struct {
	CourseID       string      `json:"course_id"`
	Name           string      `json:"name"`
	CreditHours    int         `json:"credit_hours"`
	DepartmentID   string      `json:"department_id"`
	DepartmentName string      `json:"department_name"`
	Prerequisites  []string    `json:"prerequisites"`
	MatchesLevel   bool        `json:"matches_level_filter,omitempty"`
	Children       []*TreeNode `json:"children"`
}

// DepartmentTree groups one department's root trees.
type DepartmentTree struct {
	DepartmentID   string      `json:"department_id"`
	DepartmentName string      `json:"department_name"`
	Courses        []*TreeNode `json:"courses"`
}

// CourseTreeResponse is the full forest payload.
type CourseTreeResponse struct {
	Departments  []DepartmentTree `json:"departments"`
	TotalCourses int              `json:"total_courses"`
}

// CourseRef is a lightweight course reference with display names.
type CourseRef struct {
	CourseID       string `json:"course_id"`
	Name           string `json:"name"`
	DepartmentName string `json:"department_name"`
}

// CourseLinkage lists a course's direct prerequisites and subsequents.
type CourseLinkage struct {
	CourseID      string      `json:"course_id"`
	Name          string      `json:"name"`
	Prerequisites []CourseRef `json:"prerequisites"`
	Subsequents   []CourseRef `json:"subsequents"`
}

// ChainValidation is the cycle-check verdict for a course.
type ChainValidation struct {
	CourseID string `json:"course_id"`
	Valid    bool   `json:"valid"`
	HasCycle bool   `json:"has_cycle"`
	Message  string `json:"message"`
}

// UpdateLevelRequest sets or clears a course level.
type UpdateLevelRequest struct {
	Level *int `json:"level" validate:"omitempty,min=1,max=4"`
}

// UpdateSemestersRequest replaces a course's offered semesters.
type UpdateSemestersRequest struct {
	Semesters []models.Semester `json:"semesters" validate:"required,min=1,dive,oneof=Fall Spring Summer"`
}

type catalogSnapshot struct {
	catalog   *graph.Catalog
	deptNames map[string]string
}

const catalogKey = "catalog"

// CourseTreeService builds prerequisite trees and owns the catalog
// graph mutations. The catalog snapshot is memoized in-process; the
// rendered unfiltered tree is additionally cached in Redis when
// enabled.
type CourseTreeService struct {
	courses     courseRepository
	departments departmentReader
	snapshots   *memo.Cache[string, *catalogSnapshot]
	cache       *CacheService
	metrics     *MetricsService
	treeTTL     time.Duration
	logger      *zap.Logger
}

// NewCourseTreeService constructs a CourseTreeService.
func NewCourseTreeService(courses courseRepository, departments departmentReader, cache *CacheService, metrics *MetricsService, treeTTL time.Duration, clock clockwork.Clock, logger *zap.Logger) *CourseTreeService {
	if treeTTL <= 0 {
		treeTTL = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &CourseTreeService{
		courses:     courses,
		departments: departments,
		snapshots:   memo.New[string, *catalogSnapshot](treeTTL, clock),
		cache:       cache,
		metrics:     metrics,
		treeTTL:     treeTTL,
		logger:      logger,
	}
	svc.snapshots.OnLookup = func(hit bool) { svc.metrics.RecordCacheLookup("course_tree", hit) }
	return svc
}

// BuildTree renders the filtered forest grouped by department.
func (s *CourseTreeService) BuildTree(ctx context.Context, filter graph.Filter) (*CourseTreeResponse, error) {
	cacheKey := ""
	if filter == (graph.Filter{}) {
		cacheKey = "course-tree:all"
		var cached CourseTreeResponse
		if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
			return &cached, nil
		}
	}

	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	forests := snap.catalog.BuildForest(filter)
	response := &CourseTreeResponse{Departments: make([]DepartmentTree, 0, len(forests))}
	for _, forest := range forests {
		tree := DepartmentTree{
			DepartmentID:   forest.DepartmentID,
			DepartmentName: snap.departmentName(forest.DepartmentID),
		}
		for _, root := range forest.Roots {
			node, count := snap.render(root)
			tree.Courses = append(tree.Courses, node)
			response.TotalCourses += count
		}
		response.Departments = append(response.Departments, tree)
	}

	if cacheKey != "" {
		_ = s.cache.Set(ctx, cacheKey, response, s.treeTTL)
	}
	return response, nil
}

// GetCoursePrerequisites returns a course's direct prerequisites and
// the courses that list it as a prerequisite.
func (s *CourseTreeService) GetCoursePrerequisites(ctx context.Context, courseID string) (*CourseLinkage, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	course, ok := snap.catalog.Course(courseID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}

	linkage := &CourseLinkage{
		CourseID:      course.CourseID,
		Name:          course.Name,
		Prerequisites: []CourseRef{},
		Subsequents:   []CourseRef{},
	}
	for _, prereqID := range course.Prerequisites {
		if prereq, ok := snap.catalog.Course(prereqID); ok {
			linkage.Prerequisites = append(linkage.Prerequisites, snap.ref(prereq))
		}
	}
	for _, otherID := range snap.catalog.IDs() {
		other, _ := snap.catalog.Course(otherID)
		for _, prereqID := range other.Prerequisites {
			if prereqID == courseID {
				linkage.Subsequents = append(linkage.Subsequents, snap.ref(other))
				break
			}
		}
	}
	return linkage, nil
}

// ValidatePrerequisiteChain runs the cycle check for a course.
func (s *CourseTreeService) ValidatePrerequisiteChain(ctx context.Context, courseID string) (*ChainValidation, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := snap.catalog.Course(courseID); !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}

	verdict := &ChainValidation{CourseID: courseID, Valid: true, Message: "prerequisite chain is valid"}
	if snap.catalog.HasCycle(courseID) {
		verdict.Valid = false
		verdict.HasCycle = true
		verdict.Message = "prerequisite chain contains a circular dependency"
	}
	return verdict, nil
}

// CatalogIDs returns the memoized catalog membership set.
func (s *CourseTreeService) CatalogIDs(ctx context.Context) (map[string]struct{}, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.catalog.Flatten(), nil
}

// AddPrerequisite links prereqID as a direct prerequisite of courseID.
// Links that would close a cycle are rejected.
func (s *CourseTreeService) AddPrerequisite(ctx context.Context, courseID, prereqID string) error {
	if courseID == prereqID {
		return appErrors.Clone(appErrors.ErrValidation, "a course cannot be its own prerequisite")
	}
	course, err := s.loadCourse(ctx, courseID)
	if err != nil {
		return err
	}
	if _, err := s.loadCourse(ctx, prereqID); err != nil {
		return err
	}
	for _, existing := range course.Prerequisites {
		if existing == prereqID {
			return appErrors.Clone(appErrors.ErrConflict, "prerequisite already present")
		}
	}

	snap, err := s.snapshot(ctx)
	if err != nil {
		return err
	}
	if _, circular := snap.catalog.AncestorChain(prereqID)[courseID]; circular {
		return appErrors.Clone(appErrors.ErrValidation, "adding this prerequisite would create a circular dependency")
	}

	updated := append(append([]string{}, course.Prerequisites...), prereqID)
	if err := s.courses.UpdatePrerequisites(ctx, courseID, updated); err != nil {
		return s.mutationError(err, "failed to add prerequisite")
	}
	s.invalidate(ctx)
	s.logger.Info("prerequisite added", zap.String("course_id", courseID), zap.String("prerequisite_id", prereqID))
	return nil
}

// RemovePrerequisite unlinks a direct prerequisite.
func (s *CourseTreeService) RemovePrerequisite(ctx context.Context, courseID, prereqID string) error {
	course, err := s.loadCourse(ctx, courseID)
	if err != nil {
		return err
	}

	updated := make([]string, 0, len(course.Prerequisites))
	found := false
	for _, existing := range course.Prerequisites {
		if existing == prereqID {
			found = true
			continue
		}
		updated = append(updated, existing)
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, "prerequisite not present")
	}

	if err := s.courses.UpdatePrerequisites(ctx, courseID, updated); err != nil {
		return s.mutationError(err, "failed to remove prerequisite")
	}
	s.invalidate(ctx)
	s.logger.Info("prerequisite removed", zap.String("course_id", courseID), zap.String("prerequisite_id", prereqID))
	return nil
}

// UpdateLevel sets or clears the explicit course level.
func (s *CourseTreeService) UpdateLevel(ctx context.Context, courseID string, req UpdateLevelRequest) error {
	if req.Level != nil && (*req.Level < 1 || *req.Level > 4) {
		return appErrors.Clone(appErrors.ErrValidation, "level must be between 1 and 4")
	}
	if _, err := s.loadCourse(ctx, courseID); err != nil {
		return err
	}
	if err := s.courses.UpdateLevel(ctx, courseID, req.Level); err != nil {
		return s.mutationError(err, "failed to update level")
	}
	s.invalidate(ctx)
	return nil
}

// GetSemesters returns the semesters a course is offered in.
func (s *CourseTreeService) GetSemesters(ctx context.Context, courseID string) ([]models.Semester, error) {
	course, err := s.loadCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	semesters := make([]models.Semester, 0, len(course.Semesters))
	for _, raw := range course.Semesters {
		semesters = append(semesters, models.Semester(raw))
	}
	return semesters, nil
}

// UpdateSemesters replaces a course's offered semesters with a
// validated, deduplicated subset of the known terms.
func (s *CourseTreeService) UpdateSemesters(ctx context.Context, courseID string, req UpdateSemestersRequest) error {
	if len(req.Semesters) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "at least one semester is required")
	}
	seen := make(map[models.Semester]struct{}, len(req.Semesters))
	semesters := make([]string, 0, len(req.Semesters))
	for _, semester := range req.Semesters {
		if !models.ValidSemester(semester) {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown semester %q", semester))
		}
		if _, dup := seen[semester]; dup {
			continue
		}
		seen[semester] = struct{}{}
		semesters = append(semesters, string(semester))
	}

	if _, err := s.loadCourse(ctx, courseID); err != nil {
		return err
	}
	if err := s.courses.UpdateSemesters(ctx, courseID, semesters); err != nil {
		return s.mutationError(err, "failed to update semesters")
	}
	s.invalidate(ctx)
	return nil
}

func (s *CourseTreeService) snapshot(ctx context.Context) (*catalogSnapshot, error) {
	snap, err := s.snapshots.GetOrCompute(catalogKey, func() (*catalogSnapshot, error) {
		start := time.Now()
		courses, err := s.courses.List(ctx)
		if err != nil {
			return nil, err
		}
		s.metrics.ObserveDBQuery("course_catalog", time.Since(start))
		departments, err := s.departments.List(ctx)
		if err != nil {
			return nil, err
		}
		names := make(map[string]string, len(departments))
		for _, dept := range departments {
			names[dept.DepartmentID] = dept.Name
		}
		return &catalogSnapshot{catalog: graph.NewCatalog(courses), deptNames: names}, nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course catalog")
	}
	return snap, nil
}

func (s *CourseTreeService) loadCourse(ctx context.Context, courseID string) (*models.Course, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

func (s *CourseTreeService) mutationError(err error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func (s *CourseTreeService) invalidate(ctx context.Context) {
	s.snapshots.Delete(catalogKey)
	_ = s.cache.Invalidate(ctx, "course-tree*")
}

func (snap *catalogSnapshot) departmentName(id string) string {
	if name, ok := snap.deptNames[id]; ok {
		return name
	}
	return "Unknown"
}

func (snap *catalogSnapshot) ref(course *models.Course) CourseRef {
	return CourseRef{
		CourseID:       course.CourseID,
		Name:           course.Name,
		DepartmentName: snap.departmentName(course.DepartmentID),
	}
}

// render converts a graph node into the response shape iteratively and
// returns the node count of the subtree.
func (snap *catalogSnapshot) render(root *graph.Node) (*TreeNode, int) {
	type pair struct {
		src *graph.Node
		dst *TreeNode
	}
	out := snap.node(root)
	count := 0
	stack := []pair{{src: root, dst: out}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		count++
		for _, child := range top.src.Children {
			node := snap.node(child)
			top.dst.Children = append(top.dst.Children, node)
			stack = append(stack, pair{src: child, dst: node})
		}
	}
	return out, count
}

func (snap *catalogSnapshot) node(n *graph.Node) *TreeNode {
	return &TreeNode{
		CourseID:       n.Course.CourseID,
		Name:           n.Course.Name,
		CreditHours:    n.Course.CreditHours,
		DepartmentID:   n.Course.DepartmentID,
		DepartmentName: snap.departmentName(n.Course.DepartmentID),
		Prerequisites:  append([]string{}, n.Course.Prerequisites...),
		MatchesLevel:   n.MatchesLevel,
		Children:       []*TreeNode{},
	}
}
