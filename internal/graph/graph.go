// Package graph implements the course-dependency graph: transitive
// prerequisite and dependent chains, cycle detection, and the filtered
// tree-forest used by the catalog views. All traversals are iterative
// with explicit stacks so malformed (cyclic) catalog data can never
// overflow the call stack; cycles terminate branches instead of
// raising.
package graph

import (
	"strings"
	"unicode"

	"github.com/unireg/registrar-api/internal/models"
)

// Catalog is an immutable snapshot of the course set indexed by id.
// Traversal order follows the order courses were loaded in, which keeps
// tree building deterministic.
type Catalog struct {
	courses map[string]*models.Course
	order   []string
}

// NewCatalog builds a catalog snapshot from the full course set.
// Duplicate ids keep the first occurrence.
func NewCatalog(courses []models.Course) *Catalog {
	c := &Catalog{courses: make(map[string]*models.Course, len(courses))}
	for i := range courses {
		course := &courses[i]
		if _, ok := c.courses[course.CourseID]; ok {
			continue
		}
		c.courses[course.CourseID] = course
		c.order = append(c.order, course.CourseID)
	}
	return c
}

// Course returns the catalog entry for id.
func (c *Catalog) Course(id string) (*models.Course, bool) {
	course, ok := c.courses[id]
	return course, ok
}

// IDs returns all course ids in load order.
func (c *Catalog) IDs() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Len returns the number of courses in the snapshot.
func (c *Catalog) Len() int {
	return len(c.order)
}

// AncestorChain returns the course and every transitive prerequisite
// reachable from it. Prerequisite ids missing from the catalog are
// included in the result (the caller decides whether they matter) but
// not expanded. A per-call visited set stops revisited branches.
func (c *Catalog) AncestorChain(id string) map[string]struct{} {
	result := make(map[string]struct{})
	if _, ok := c.courses[id]; !ok {
		return result
	}

	stack := []string{id}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := result[current]; seen {
			continue
		}
		result[current] = struct{}{}

		course, ok := c.courses[current]
		if !ok {
			continue
		}
		for _, prereq := range course.Prerequisites {
			if _, seen := result[prereq]; !seen {
				stack = append(stack, prereq)
			}
		}
	}
	return result
}

// DescendantChain returns the course and every course that transitively
// depends on it, found by scanning all prerequisite lists. Same cycle
// guard as AncestorChain.
func (c *Catalog) DescendantChain(id string) map[string]struct{} {
	result := make(map[string]struct{})
	if _, ok := c.courses[id]; !ok {
		return result
	}

	stack := []string{id}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := result[current]; seen {
			continue
		}
		result[current] = struct{}{}

		for _, otherID := range c.order {
			if _, seen := result[otherID]; seen {
				continue
			}
			other := c.courses[otherID]
			for _, prereq := range other.Prerequisites {
				if prereq == current {
					stack = append(stack, otherID)
					break
				}
			}
		}
	}
	return result
}

// HasCycle walks prerequisite edges from id and reports whether any
// node repeats along the current path. It terminates on any finite
// graph and never raises; a cyclic catalog is an admin data error, not
// a read-path failure.
func (c *Catalog) HasCycle(id string) bool {
	if _, ok := c.courses[id]; !ok {
		return false
	}

	// Iterative DFS with explicit enter/leave frames; onPath tracks the
	// current path only, done tracks fully explored nodes.
	type frame struct {
		id    string
		leave bool
	}
	onPath := make(map[string]struct{})
	done := make(map[string]struct{})
	stack := []frame{{id: id}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if top.leave {
			delete(onPath, top.id)
			done[top.id] = struct{}{}
			continue
		}
		if _, ok := onPath[top.id]; ok {
			return true
		}
		if _, ok := done[top.id]; ok {
			continue
		}

		course, ok := c.courses[top.id]
		if !ok {
			continue
		}

		onPath[top.id] = struct{}{}
		stack = append(stack, frame{id: top.id, leave: true})
		for _, prereq := range course.Prerequisites {
			if _, ok := onPath[prereq]; ok {
				return true
			}
			if _, explored := done[prereq]; !explored {
				stack = append(stack, frame{id: prereq})
			}
		}
	}
	return false
}

// Filter scopes BuildForest. Zero values mean "no filter".
type Filter struct {
	DepartmentID string
	Level        int
	Search       string
}

// Node is one course in a built tree.
type Node struct {
	Course       *models.Course
	MatchesLevel bool
	Children     []*Node
}

// DepartmentForest groups the root trees of one department.
type DepartmentForest struct {
	DepartmentID string
	Roots        []*Node
}

// BuildForest filters the catalog, expands level matches with their
// ancestor and descendant chains so prerequisite context stays visible,
// and partitions the working set into per-department root trees. Each
// course appears at most once: under a level filter with no matches the
// full catalog is used instead, and diamond dependencies are claimed by
// the first parent in processing order.
func (c *Catalog) BuildForest(f Filter) []DepartmentForest {
	working := c.workingSet(f)
	if len(working) == 0 {
		return nil
	}

	nodes := make(map[string]*Node, len(working))
	for id := range working {
		course := c.courses[id]
		nodes[id] = &Node{
			Course:       course,
			MatchesLevel: f.Level > 0 && matchesLevel(course, f.Level),
		}
	}

	// Roots: no prerequisite present in the working set. Unknown or
	// filtered-out prerequisites do not anchor a course below a parent.
	processed := make(map[string]struct{}, len(working))
	var roots []*Node
	for _, id := range c.order {
		node, ok := nodes[id]
		if !ok {
			continue
		}
		anchored := false
		for _, prereq := range node.Course.Prerequisites {
			if _, present := working[prereq]; present && prereq != id {
				anchored = true
				break
			}
		}
		if !anchored {
			roots = append(roots, node)
			processed[id] = struct{}{}
		}
	}

	// Attach children breadth-first per root with a worklist. The
	// processed guard gives diamonds a single parent and terminates the
	// walk even if the working set contains a cycle.
	for _, root := range roots {
		queue := []*Node{root}
		for len(queue) > 0 {
			parent := queue[0]
			queue = queue[1:]
			for _, id := range c.order {
				child, ok := nodes[id]
				if !ok {
					continue
				}
				if _, claimed := processed[id]; claimed {
					continue
				}
				if !hasPrerequisite(child.Course, parent.Course.CourseID) {
					continue
				}
				processed[id] = struct{}{}
				parent.Children = append(parent.Children, child)
				queue = append(queue, child)
			}
		}
	}

	return groupByDepartment(roots)
}

// Flatten returns the ids of every course that would appear in the
// unfiltered forest. Isolated courses are included, so this is the
// catalog membership set used by the eligibility engine.
func (c *Catalog) Flatten() map[string]struct{} {
	members := make(map[string]struct{}, len(c.order))
	for _, id := range c.order {
		members[id] = struct{}{}
	}
	return members
}

func (c *Catalog) workingSet(f Filter) map[string]struct{} {
	base := make(map[string]struct{})
	for _, id := range c.order {
		course := c.courses[id]
		if f.DepartmentID != "" && course.DepartmentID != f.DepartmentID {
			continue
		}
		if f.Search != "" && !matchesSearch(course, f.Search) {
			continue
		}
		if f.Level > 0 && !matchesLevel(course, f.Level) {
			continue
		}
		base[id] = struct{}{}
	}

	if f.Level <= 0 {
		return base
	}

	// Level filtering hides prerequisite context, so union in the full
	// ancestor and descendant chains of every match.
	expanded := make(map[string]struct{}, len(base))
	for id := range base {
		expanded[id] = struct{}{}
		for anc := range c.AncestorChain(id) {
			if _, ok := c.courses[anc]; ok {
				expanded[anc] = struct{}{}
			}
		}
		for desc := range c.DescendantChain(id) {
			expanded[desc] = struct{}{}
		}
	}
	if len(expanded) == 0 {
		// Nothing matched the level filter: fall back to everything.
		return c.Flatten()
	}
	return expanded
}

func matchesSearch(course *models.Course, search string) bool {
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(course.Name), needle) ||
		strings.Contains(strings.ToLower(course.CourseID), needle)
}

// matchesLevel accepts an explicit level field match or the id-prefix
// heuristic: the id, or the first digit run embedded in it, starts with
// the level digit followed by at least two more digits ("301",
// "COUR3010").
func matchesLevel(course *models.Course, level int) bool {
	if course.Level != nil && *course.Level == level {
		return true
	}
	digits := leadingDigitRun(course.CourseID)
	if digits == "" {
		return false
	}
	levelDigit := byte('0' + level)
	return len(digits) >= 3 && digits[0] == levelDigit
}

// leadingDigitRun extracts the first run of digits in the id.
func leadingDigitRun(id string) string {
	start := -1
	for i, r := range id {
		if unicode.IsDigit(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			return id[start:i]
		}
	}
	if start >= 0 {
		return id[start:]
	}
	return ""
}

func hasPrerequisite(course *models.Course, id string) bool {
	for _, prereq := range course.Prerequisites {
		if prereq == id {
			return true
		}
	}
	return false
}

func groupByDepartment(roots []*Node) []DepartmentForest {
	byDept := make(map[string]*DepartmentForest)
	var forests []*DepartmentForest
	for _, root := range roots {
		deptID := root.Course.DepartmentID
		forest, ok := byDept[deptID]
		if !ok {
			forest = &DepartmentForest{DepartmentID: deptID}
			byDept[deptID] = forest
			forests = append(forests, forest)
		}
		forest.Roots = append(forest.Roots, root)
	}
	out := make([]DepartmentForest, len(forests))
	for i, f := range forests {
		out[i] = *f
	}
	return out
}
