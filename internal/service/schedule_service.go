package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/unireg/registrar-api/internal/memo"
	"github.com/unireg/registrar-api/internal/models"
	appErrors "github.com/unireg/registrar-api/pkg/errors"
	"github.com/unireg/registrar-api/pkg/export"
)

type scheduleRepository interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.ScheduleEntry, error)
	Upsert(ctx context.Context, entry *models.ScheduleEntry) error
	Delete(ctx context.Context, studentID, courseID string, slotType models.SlotType) error
	CountBySlots(ctx context.Context, slotIDs []string) (map[string]int, error)
}

type timeSlotReader interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.TimeSlot, error)
	ListAll(ctx context.Context) ([]models.TimeSlot, error)
	FindByID(ctx context.Context, id string) (*models.TimeSlot, error)
}

type roomReader interface {
	MapByIDs(ctx context.Context, ids []string) (map[string]models.Room, error)
}

type instructorReader interface {
	MapByIDs(ctx context.Context, ids []string) (map[string]models.Instructor, error)
}

type activeEnrollmentReader interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error)
	FindActive(ctx context.Context, studentID, courseID string) (*models.Enrollment, error)
}

type scheduleCourseReader interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

// SelectSlotRequest is the slot-selection payload.
type SelectSlotRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	CourseID  string `json:"course_id" validate:"required"`
	SlotID    string `json:"slot_id" validate:"required"`
}

// ScheduleService owns slot selection, conflict detection, weekly
// schedule assembly and seat accounting. Seat availability is counted
// against schedule entries keyed by slot id, the same rows selection
// writes, so occupancy and selection cannot drift apart.
type ScheduleService struct {
	schedules   scheduleRepository
	slots       timeSlotReader
	rooms       roomReader
	instructors instructorReader
	enrollments activeEnrollmentReader
	courses     scheduleCourseReader
	semesters   registrationPolicy
	seatCounts  *memo.Cache[string, *models.CourseSeatAvailability]
	courseSlots *memo.Cache[string, []models.TimeSlot]
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewScheduleService constructs a ScheduleService.
func NewScheduleService(
	schedules scheduleRepository,
	slots timeSlotReader,
	rooms roomReader,
	instructors instructorReader,
	enrollments activeEnrollmentReader,
	courses scheduleCourseReader,
	semesters registrationPolicy,
	metrics *MetricsService,
	seatTTL time.Duration,
	slotTTL time.Duration,
	clock clockwork.Clock,
	validate *validator.Validate,
	logger *zap.Logger,
) *ScheduleService {
	if seatTTL <= 0 {
		seatTTL = time.Minute
	}
	if slotTTL <= 0 {
		slotTTL = 5 * time.Minute
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &ScheduleService{
		schedules:   schedules,
		slots:       slots,
		rooms:       rooms,
		instructors: instructors,
		enrollments: enrollments,
		courses:     courses,
		semesters:   semesters,
		seatCounts:  memo.New[string, *models.CourseSeatAvailability](seatTTL, clock),
		courseSlots: memo.New[string, []models.TimeSlot](slotTTL, clock),
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
	}
	svc.seatCounts.OnLookup = func(hit bool) { svc.metrics.RecordCacheLookup("seat_counts", hit) }
	svc.courseSlots.OnLookup = func(hit bool) { svc.metrics.RecordCacheLookup("course_slots", hit) }
	return svc
}

// SelectSlot binds a student's (course, type) pair to a slot. An
// existing selection of the same type for the course is replaced in
// place; any other overlapping entry rejects the selection with the
// conflicting course and time range.
func (s *ScheduleService) SelectSlot(ctx context.Context, req SelectSlotRequest) (*models.ScheduleEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid slot selection payload")
	}

	if _, err := s.enrollments.FindActive(ctx, req.StudentID, req.CourseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotEligible, "student is not enrolled in this course")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}

	slot, err := s.slots.FindByID(ctx, req.SlotID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "time slot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time slot")
	}
	if slot.CourseID != req.CourseID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "time slot does not belong to this course")
	}

	start, err := parseClock(slot.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := parseClock(slot.EndTime)
	if err != nil {
		return nil, err
	}

	entries, err := s.schedules.ListByStudent(ctx, req.StudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	for _, entry := range entries {
		// The same-type entry for this course is being replaced and
		// cannot conflict with its replacement.
		if entry.CourseID == req.CourseID && entry.Type == slot.Type {
			continue
		}
		if entry.Day != slot.Day {
			continue
		}
		entryStart, perr := parseClock(entry.StartTime)
		if perr != nil {
			continue
		}
		entryEnd, perr := parseClock(entry.EndTime)
		if perr != nil {
			continue
		}
		if overlaps(start, end, entryStart, entryEnd) {
			return nil, s.conflictError(ctx, &entry, slot)
		}
	}

	record := &models.ScheduleEntry{
		StudentID:    req.StudentID,
		CourseID:     req.CourseID,
		SlotID:       slot.SlotID,
		Type:         slot.Type,
		Day:          slot.Day,
		StartTime:    slot.StartTime,
		EndTime:      slot.EndTime,
		RoomID:       slot.RoomID,
		InstructorID: slot.InstructorID,
	}
	if err := s.schedules.Upsert(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save slot selection")
	}

	s.seatCounts.Delete(req.CourseID)
	s.logger.Info("slot selected",
		zap.String("student_id", req.StudentID),
		zap.String("course_id", req.CourseID),
		zap.String("slot_id", slot.SlotID))
	return record, nil
}

// RemoveSlot drops a student's selection for a (course, type) pair.
func (s *ScheduleService) RemoveSlot(ctx context.Context, studentID, courseID string, slotType models.SlotType) error {
	if !models.ValidSlotType(slotType) {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown slot type %q", slotType))
	}
	if err := s.schedules.Delete(ctx, studentID, courseID, slotType); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "no slot selected for this course and type")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove slot selection")
	}
	s.seatCounts.Delete(courseID)
	return nil
}

// GetStudentSchedule assembles the weekly schedule grouped by day with
// per-day entries sorted by start time.
func (s *ScheduleService) GetStudentSchedule(ctx context.Context, studentID string) (*models.WeeklySchedule, error) {
	entries, err := s.schedules.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}

	details, err := s.describeEntries(ctx, entries)
	if err != nil {
		return nil, err
	}

	semester, err := s.semesters.CurrentSemester(ctx)
	if err != nil {
		return nil, err
	}

	schedule := &models.WeeklySchedule{
		StudentID: studentID,
		Semester:  string(semester),
		Days:      make(map[models.DayOfWeek][]models.TimeSlotDetail, len(models.Days)),
	}
	for _, day := range models.Days {
		schedule.Days[day] = []models.TimeSlotDetail{}
	}

	courseHours := make(map[string]int)
	var weeklyMinutes int
	for _, detail := range details {
		schedule.Days[detail.Day] = append(schedule.Days[detail.Day], detail)
		start, serr := parseClock(detail.StartTime)
		end, eerr := parseClock(detail.EndTime)
		if serr == nil && eerr == nil && end > start {
			weeklyMinutes += end - start
		}
		if _, seen := courseHours[detail.CourseID]; !seen {
			if course, cerr := s.courses.FindByID(ctx, detail.CourseID); cerr == nil {
				courseHours[detail.CourseID] = course.CreditHours
			} else {
				courseHours[detail.CourseID] = 0
			}
		}
	}

	for day := range schedule.Days {
		entries := schedule.Days[day]
		sort.SliceStable(entries, func(i, j int) bool {
			si, _ := parseClock(entries[i].StartTime)
			sj, _ := parseClock(entries[j].StartTime)
			return si < sj
		})
		schedule.Days[day] = entries
	}

	schedule.TotalCourses = len(courseHours)
	for _, hours := range courseHours {
		schedule.TotalCreditHours += hours
	}
	schedule.WeeklyClassHours = float64(weeklyMinutes) / 60.0
	return schedule, nil
}

// GetConflicts reports every pairwise overlap in a student's current
// schedule. A healthy schedule returns an empty list: selection rejects
// conflicts, so anything here was created by catalog edits after the
// fact.
func (s *ScheduleService) GetConflicts(ctx context.Context, studentID string) ([]models.ConflictPair, error) {
	entries, err := s.schedules.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}

	names := s.courseNames(ctx, entries)
	conflicts := []models.ConflictPair{}
	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			first, second := entries[i], entries[j]
			if first.Day != second.Day {
				continue
			}
			s1, err1 := parseClock(first.StartTime)
			e1, err2 := parseClock(first.EndTime)
			s2, err3 := parseClock(second.StartTime)
			e2, err4 := parseClock(second.EndTime)
			if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
				continue
			}
			if !overlaps(s1, e1, s2, e2) {
				continue
			}
			conflicts = append(conflicts, models.ConflictPair{
				Day:    first.Day,
				First:  conflictSide(&first, names),
				Second: conflictSide(&second, names),
			})
		}
	}
	return conflicts, nil
}

// SlotRecommendation lists the non-conflicting options for one
// required-but-unselected slot type.
type SlotRecommendation struct {
	Type  models.SlotType         `json:"type"`
	Slots []models.TimeSlotDetail `json:"slots"`
}

// CourseRecommendations groups recommended slots for one enrolled
// course that is still missing a required selection.
type CourseRecommendations struct {
	CourseID   string               `json:"course_id"`
	CourseName string               `json:"course_name"`
	Types      []SlotRecommendation `json:"types"`
}

// GetRecommendations walks the student's active enrollments and, for
// each course with a required-but-unselected slot type, returns the
// slots that fit the current schedule. Lecture is always required; Lab
// and Tutorial only when the course offers slots of that type. Courses
// without any time slots are skipped.
func (s *ScheduleService) GetRecommendations(ctx context.Context, studentID string) ([]CourseRecommendations, error) {
	enrollments, err := s.enrollments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollments")
	}

	entries, err := s.schedules.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	selected := make(map[string]map[models.SlotType]bool)
	for _, entry := range entries {
		if selected[entry.CourseID] == nil {
			selected[entry.CourseID] = make(map[models.SlotType]bool)
		}
		selected[entry.CourseID][entry.Type] = true
	}

	recommendations := []CourseRecommendations{}
	for _, enrollment := range enrollments {
		courseID := enrollment.CourseID
		courseSlots, err := s.listCourseSlots(ctx, courseID)
		if err != nil {
			return nil, err
		}
		if len(courseSlots) == 0 {
			continue
		}

		offered := make(map[models.SlotType][]models.TimeSlot)
		for _, slot := range courseSlots {
			offered[slot.Type] = append(offered[slot.Type], slot)
		}

		var types []SlotRecommendation
		for _, slotType := range models.SlotTypes {
			required := slotType == models.SlotTypeLecture || len(offered[slotType]) > 0
			if !required || selected[courseID][slotType] {
				continue
			}
			var fitting []models.TimeSlot
			for _, slot := range offered[slotType] {
				if s.fitsSchedule(&slot, entries) {
					fitting = append(fitting, slot)
				}
			}
			details, err := s.describeSlots(ctx, fitting, courseID)
			if err != nil {
				return nil, err
			}
			types = append(types, SlotRecommendation{Type: slotType, Slots: details})
		}
		if len(types) == 0 {
			continue
		}

		courseName := courseID
		if course, err := s.courses.FindByID(ctx, courseID); err == nil {
			courseName = course.Name
		}
		recommendations = append(recommendations, CourseRecommendations{
			CourseID:   courseID,
			CourseName: courseName,
			Types:      types,
		})
	}
	return recommendations, nil
}

// GetCourseSlots returns a course's offered slots grouped by type.
func (s *ScheduleService) GetCourseSlots(ctx context.Context, courseID string) (map[models.SlotType][]models.TimeSlotDetail, error) {
	slots, err := s.listCourseSlots(ctx, courseID)
	if err != nil {
		return nil, err
	}
	details, err := s.describeSlots(ctx, slots, courseID)
	if err != nil {
		return nil, err
	}
	grouped := make(map[models.SlotType][]models.TimeSlotDetail)
	for _, detail := range details {
		grouped[detail.Type] = append(grouped[detail.Type], detail)
	}
	return grouped, nil
}

// listCourseSlots memoizes the per-course slot listing. Slot catalogs
// change rarely, so short staleness beats a query per browse.
func (s *ScheduleService) listCourseSlots(ctx context.Context, courseID string) ([]models.TimeSlot, error) {
	slots, err := s.courseSlots.GetOrCompute(courseID, func() ([]models.TimeSlot, error) {
		return s.slots.ListByCourse(ctx, courseID)
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course slots")
	}
	return slots, nil
}

// ListAllSlots returns the full slot catalog grouped by course.
// Admin listing; descriptions are skipped to keep it one query.
func (s *ScheduleService) ListAllSlots(ctx context.Context) (map[string][]models.TimeSlot, error) {
	slots, err := s.slots.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time slots")
	}
	grouped := make(map[string][]models.TimeSlot)
	for _, slot := range slots {
		grouped[slot.CourseID] = append(grouped[slot.CourseID], slot)
	}
	return grouped, nil
}

// GetSeatAvailability reports per-slot seat counts for a course,
// memoized briefly since counting scans schedule entries.
func (s *ScheduleService) GetSeatAvailability(ctx context.Context, courseID string) (*models.CourseSeatAvailability, error) {
	availability, err := s.seatCounts.GetOrCompute(courseID, func() (*models.CourseSeatAvailability, error) {
		return s.computeSeatAvailability(ctx, courseID)
	})
	if err != nil {
		return nil, err
	}
	return availability, nil
}

// ExportSchedule renders the weekly schedule as CSV or PDF.
func (s *ScheduleService) ExportSchedule(ctx context.Context, studentID, format string) ([]byte, string, error) {
	schedule, err := s.GetStudentSchedule(ctx, studentID)
	if err != nil {
		return nil, "", err
	}

	dataset := export.Dataset{
		Headers: []string{"Day", "Start", "End", "Course", "Type", "Room", "Instructor"},
	}
	for _, day := range models.Days {
		for _, detail := range schedule.Days[day] {
			instructor := ""
			if detail.InstructorName != nil {
				instructor = *detail.InstructorName
			}
			dataset.Rows = append(dataset.Rows, map[string]string{
				"Day":        string(day),
				"Start":      detail.StartTime,
				"End":        detail.EndTime,
				"Course":     detail.CourseName,
				"Type":       string(detail.Type),
				"Room":       detail.RoomName,
				"Instructor": instructor,
			})
		}
	}

	switch strings.ToLower(format) {
	case "csv", "":
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return payload, "text/csv", nil
	case "pdf":
		payload, err := s.pdf.Render(dataset, fmt.Sprintf("Weekly Schedule %s", schedule.Semester))
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return payload, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

func (s *ScheduleService) computeSeatAvailability(ctx context.Context, courseID string) (*models.CourseSeatAvailability, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	slots, err := s.slots.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course slots")
	}
	details, err := s.describeSlots(ctx, slots, courseID)
	if err != nil {
		return nil, err
	}

	slotIDs := make([]string, 0, len(slots))
	roomIDs := make([]string, 0, len(slots))
	for _, slot := range slots {
		slotIDs = append(slotIDs, slot.SlotID)
		roomIDs = append(roomIDs, slot.RoomID)
	}
	start := time.Now()
	counts, err := s.schedules.CountBySlots(ctx, slotIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count slot occupancy")
	}
	s.metrics.ObserveDBQuery("slot_occupancy", time.Since(start))
	rooms, err := s.rooms.MapByIDs(ctx, roomIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}

	availability := &models.CourseSeatAvailability{
		CourseID:   course.CourseID,
		CourseName: course.Name,
		Slots:      make(map[models.SlotType][]models.SlotSeats),
	}
	for _, detail := range details {
		capacity := 0
		if room, ok := rooms[detail.RoomID]; ok {
			capacity = room.Capacity
		}
		enrolled := counts[detail.SlotID]
		seats := capacity - enrolled
		if seats < 0 {
			seats = 0
		}
		availability.Slots[detail.Type] = append(availability.Slots[detail.Type], models.SlotSeats{
			TimeSlotDetail: detail,
			RoomCapacity:   capacity,
			EnrolledCount:  enrolled,
			SeatsAvailable: seats,
		})
	}
	return availability, nil
}

// fitsSchedule reports whether a slot avoids every existing entry.
// Unparseable times count as conflicts so bad data is never
// recommended.
func (s *ScheduleService) fitsSchedule(slot *models.TimeSlot, entries []models.ScheduleEntry) bool {
	start, err := parseClock(slot.StartTime)
	if err != nil {
		return false
	}
	end, err := parseClock(slot.EndTime)
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if entry.Day != slot.Day {
			continue
		}
		entryStart, err1 := parseClock(entry.StartTime)
		entryEnd, err2 := parseClock(entry.EndTime)
		if err1 != nil || err2 != nil {
			return false
		}
		if overlaps(start, end, entryStart, entryEnd) {
			return false
		}
	}
	return true
}

func (s *ScheduleService) conflictError(ctx context.Context, existing *models.ScheduleEntry, slot *models.TimeSlot) error {
	existingName := existing.CourseID
	if course, err := s.courses.FindByID(ctx, existing.CourseID); err == nil {
		existingName = course.Name
	}
	newName := slot.CourseID
	if course, err := s.courses.FindByID(ctx, slot.CourseID); err == nil {
		newName = course.Name
	}
	return appErrors.Clone(appErrors.ErrScheduleConflict, fmt.Sprintf(
		"%s %s (%s %s-%s) conflicts with %s %s (%s-%s)",
		newName, slot.Type, slot.Day, slot.StartTime, slot.EndTime,
		existingName, existing.Type, existing.StartTime, existing.EndTime))
}

// describeEntries converts schedule entries to display details.
func (s *ScheduleService) describeEntries(ctx context.Context, entries []models.ScheduleEntry) ([]models.TimeSlotDetail, error) {
	roomIDs := make([]string, 0, len(entries))
	instructorIDs := make([]string, 0, len(entries))
	for _, entry := range entries {
		roomIDs = append(roomIDs, entry.RoomID)
		if entry.InstructorID != nil {
			instructorIDs = append(instructorIDs, *entry.InstructorID)
		}
	}
	rooms, err := s.rooms.MapByIDs(ctx, roomIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}
	instructors, err := s.instructors.MapByIDs(ctx, instructorIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructors")
	}
	names := s.courseNames(ctx, entries)

	details := make([]models.TimeSlotDetail, 0, len(entries))
	for _, entry := range entries {
		detail := models.TimeSlotDetail{
			TimeSlot: models.TimeSlot{
				SlotID:       entry.SlotID,
				CourseID:     entry.CourseID,
				Day:          entry.Day,
				StartTime:    entry.StartTime,
				EndTime:      entry.EndTime,
				Type:         entry.Type,
				RoomID:       entry.RoomID,
				InstructorID: entry.InstructorID,
			},
			CourseName: names[entry.CourseID],
		}
		if room, ok := rooms[entry.RoomID]; ok {
			detail.RoomName = room.DisplayName()
		} else {
			detail.RoomName = "Unknown"
		}
		if entry.InstructorID != nil {
			if instructor, ok := instructors[*entry.InstructorID]; ok {
				name := instructor.Name
				detail.InstructorName = &name
			}
		}
		details = append(details, detail)
	}
	return details, nil
}

// describeSlots converts raw slots to display details.
func (s *ScheduleService) describeSlots(ctx context.Context, slots []models.TimeSlot, courseID string) ([]models.TimeSlotDetail, error) {
	courseName := courseID
	if course, err := s.courses.FindByID(ctx, courseID); err == nil {
		courseName = course.Name
	}

	roomIDs := make([]string, 0, len(slots))
	instructorIDs := make([]string, 0, len(slots))
	for _, slot := range slots {
		roomIDs = append(roomIDs, slot.RoomID)
		if slot.InstructorID != nil {
			instructorIDs = append(instructorIDs, *slot.InstructorID)
		}
	}
	rooms, err := s.rooms.MapByIDs(ctx, roomIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}
	instructors, err := s.instructors.MapByIDs(ctx, instructorIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load instructors")
	}

	details := make([]models.TimeSlotDetail, 0, len(slots))
	for _, slot := range slots {
		detail := models.TimeSlotDetail{TimeSlot: slot, CourseName: courseName}
		if room, ok := rooms[slot.RoomID]; ok {
			detail.RoomName = room.DisplayName()
		} else {
			detail.RoomName = "Unknown"
		}
		if slot.InstructorID != nil {
			if instructor, ok := instructors[*slot.InstructorID]; ok {
				name := instructor.Name
				detail.InstructorName = &name
			}
		}
		details = append(details, detail)
	}
	return details, nil
}

func (s *ScheduleService) courseNames(ctx context.Context, entries []models.ScheduleEntry) map[string]string {
	names := make(map[string]string)
	for _, entry := range entries {
		if _, ok := names[entry.CourseID]; ok {
			continue
		}
		if course, err := s.courses.FindByID(ctx, entry.CourseID); err == nil {
			names[entry.CourseID] = course.Name
		} else {
			names[entry.CourseID] = entry.CourseID
		}
	}
	return names
}

func conflictSide(entry *models.ScheduleEntry, names map[string]string) models.ConflictSide {
	return models.ConflictSide{
		CourseID:   entry.CourseID,
		CourseName: names[entry.CourseID],
		Type:       entry.Type,
		TimeRange:  entry.StartTime + "-" + entry.EndTime,
	}
}
