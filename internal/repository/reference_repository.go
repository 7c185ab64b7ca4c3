package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/unireg/registrar-api/internal/models"
)

// DepartmentRepository reads department reference data.
type DepartmentRepository struct {
	db *sqlx.DB
}

// NewDepartmentRepository constructs a DepartmentRepository.
func NewDepartmentRepository(db *sqlx.DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

// List returns all departments.
func (r *DepartmentRepository) List(ctx context.Context) ([]models.Department, error) {
	const query = `SELECT department_id, name FROM departments ORDER BY department_id`
	var departments []models.Department
	if err := r.db.SelectContext(ctx, &departments, query); err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	return departments, nil
}

// RoomRepository reads room reference data.
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository constructs a RoomRepository.
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// MapByIDs returns the rooms for the given ids keyed by id. Missing
// ids are simply absent from the map.
func (r *RoomRepository) MapByIDs(ctx context.Context, ids []string) (map[string]models.Room, error) {
	out := make(map[string]models.Room, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	const query = `SELECT room_id, building, room_number, capacity FROM rooms WHERE room_id = ANY($1)`
	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, query, pq.StringArray(ids)); err != nil {
		return nil, fmt.Errorf("map rooms: %w", err)
	}
	for _, room := range rooms {
		out[room.RoomID] = room
	}
	return out, nil
}

// InstructorRepository reads instructor reference data.
type InstructorRepository struct {
	db *sqlx.DB
}

// NewInstructorRepository constructs an InstructorRepository.
func NewInstructorRepository(db *sqlx.DB) *InstructorRepository {
	return &InstructorRepository{db: db}
}

// MapByIDs returns the instructors for the given ids keyed by id.
func (r *InstructorRepository) MapByIDs(ctx context.Context, ids []string) (map[string]models.Instructor, error) {
	out := make(map[string]models.Instructor, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	const query = `SELECT instructor_id, name, department_id FROM instructors WHERE instructor_id = ANY($1)`
	var instructors []models.Instructor
	if err := r.db.SelectContext(ctx, &instructors, query, pq.StringArray(ids)); err != nil {
		return nil, fmt.Errorf("map instructors: %w", err)
	}
	for _, instructor := range instructors {
		out[instructor.InstructorID] = instructor
	}
	return out, nil
}
