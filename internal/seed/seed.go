// Package seed creates the sample dormitory database the demo queries:
// three floors of rooms, a cohort of students, their occupancy history and a
// handful of maintenance requests.
package seed

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"time"

	_ "modernc.org/sqlite"
)

const (
	floors        = 3
	roomsPerFloor = 5
	roomCapacity  = 4
	studentCount  = 40
	checkedOut    = 12
	requestCount  = 15
)

const schema = `
CREATE TABLE IF NOT EXISTS rooms (
	room_id INTEGER PRIMARY KEY,
	floor INTEGER NOT NULL,
	room_number TEXT NOT NULL,
	capacity INTEGER DEFAULT 4,
	UNIQUE(floor, room_number)
);
CREATE TABLE IF NOT EXISTS students (
	student_id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	gender TEXT NOT NULL,
	program TEXT NOT NULL,
	contact_number TEXT,
	emergency_contact TEXT,
	status TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS occupancy (
	occupancy_id INTEGER PRIMARY KEY,
	student_id TEXT NOT NULL,
	room_id INTEGER NOT NULL,
	check_in_date DATE NOT NULL,
	check_out_date DATE,
	FOREIGN KEY (student_id) REFERENCES students(student_id),
	FOREIGN KEY (room_id) REFERENCES rooms(room_id)
);
CREATE TABLE IF NOT EXISTS maintenance (
	request_id INTEGER PRIMARY KEY,
	room_id INTEGER NOT NULL,
	issue_description TEXT NOT NULL,
	reported_date DATE NOT NULL,
	status TEXT NOT NULL,
	resolved_date DATE,
	FOREIGN KEY (room_id) REFERENCES rooms(room_id)
);`

var (
	programs = []string{"Computer Science", "Engineering", "Business", "Medicine", "Arts",
		"Biology", "Physics", "Chemistry", "Mathematics", "Psychology"}
	genders = []string{"Male", "Female"}

	firstNames = []string{"Alex", "Jordan", "Taylor", "Morgan", "Casey", "Riley", "Quinn",
		"Jamie", "Avery", "Skyler", "Aiden", "Emma", "Olivia", "Noah",
		"Liam", "Sophia", "Isabella", "Mia", "Charlotte", "Amelia",
		"Harper", "Evelyn", "Abigail", "Emily", "Michael", "Ethan",
		"Daniel", "Matthew", "James", "Benjamin", "Elijah", "Lucas",
		"Mason", "Logan", "Alexander", "William", "Jacob", "Samuel",
		"Henry", "David"}
	lastNames = []string{"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia",
		"Miller", "Davis", "Rodriguez", "Martinez", "Hernandez",
		"Lopez", "Gonzalez", "Wilson", "Anderson", "Thomas", "Taylor",
		"Moore", "Jackson", "Martin", "Lee", "Perez", "Thompson",
		"White", "Harris", "Sanchez", "Clark", "Ramirez", "Lewis",
		"Robinson", "Walker", "Young", "Allen", "King", "Wright",
		"Scott", "Torres", "Nguyen", "Hill", "Flores"}
	issues = []string{"Broken light fixture", "Leaking faucet", "Clogged toilet",
		"Faulty air conditioner", "Damaged furniture", "Pest control needed",
		"Window won't close", "Door lock issue", "Ceiling fan not working",
		"Electrical outlet not working", "Heating issue", "Water damage"}
	requestStatuses = []string{"Pending", "In Progress", "Resolved"}
)

// Create builds the database at path and fills it with sample data. rng may
// be fixed for reproducible output; a nil rng uses a time-based seed.
func Create(ctx context.Context, path string, rng *rand.Rand) error {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000")
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := insertRooms(ctx, tx); err != nil {
		return err
	}
	if err := insertStudents(ctx, tx, rng); err != nil {
		return err
	}
	if err := insertOccupancy(ctx, tx, rng); err != nil {
		return err
	}
	if err := insertMaintenance(ctx, tx, rng); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func insertRooms(ctx context.Context, tx *sql.Tx) error {
	for floor := 1; floor <= floors; floor++ {
		for n := 1; n <= roomsPerFloor; n++ {
			number := fmt.Sprintf("%d0%d", floor, n)
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO rooms (floor, room_number, capacity) VALUES (?, ?, ?)`,
				floor, number, roomCapacity); err != nil {
				return fmt.Errorf("insert room %s: %w", number, err)
			}
		}
	}
	return nil
}

func insertStudents(ctx context.Context, tx *sql.Tx, rng *rand.Rand) error {
	for i := 1; i <= studentCount; i++ {
		id := fmt.Sprintf("STU%d", 2023000+i)
		name := pick(rng, firstNames) + " " + pick(rng, lastNames)
		status := "Active"
		if i <= checkedOut {
			status = "Checked Out"
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO students
			   (student_id, name, gender, program, contact_number, emergency_contact, status)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, name, pick(rng, genders), pick(rng, programs),
			phone(rng), phone(rng), status); err != nil {
			return fmt.Errorf("insert student %s: %w", id, err)
		}
	}
	return nil
}

func insertOccupancy(ctx context.Context, tx *sql.Tx, rng *rand.Rand) error {
	roomIDs, err := queryInts(ctx, tx, `SELECT room_id FROM rooms`)
	if err != nil {
		return err
	}
	rows, err := tx.QueryContext(ctx, `SELECT student_id, status FROM students`)
	if err != nil {
		return fmt.Errorf("query students: %w", err)
	}
	type student struct{ id, status string }
	var students []student
	for rows.Next() {
		var s student
		if err := rows.Scan(&s.id, &s.status); err != nil {
			rows.Close()
			return err
		}
		students = append(students, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	now := time.Now()
	beds := make(map[int]int, len(roomIDs))
	for _, s := range students {
		var open []int
		for _, id := range roomIDs {
			if beds[id] < roomCapacity {
				open = append(open, id)
			}
		}
		if len(open) == 0 {
			break
		}
		roomID := open[rng.Intn(len(open))]
		beds[roomID]++
		daysAgo := 30 + rng.Intn(151)
		checkIn := now.AddDate(0, 0, -daysAgo).Format("2006-01-02")
		var checkOut any
		if s.status == "Checked Out" {
			after := 30 + rng.Intn(daysAgo-30+1)
			checkOut = now.AddDate(0, 0, -(daysAgo - after)).Format("2006-01-02")
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO occupancy (student_id, room_id, check_in_date, check_out_date)
			 VALUES (?, ?, ?, ?)`,
			s.id, roomID, checkIn, checkOut); err != nil {
			return fmt.Errorf("insert occupancy for %s: %w", s.id, err)
		}
	}
	return nil
}

func insertMaintenance(ctx context.Context, tx *sql.Tx, rng *rand.Rand) error {
	roomIDs, err := queryInts(ctx, tx, `SELECT room_id FROM rooms`)
	if err != nil {
		return err
	}
	now := time.Now()
	for i := 0; i < requestCount; i++ {
		roomID := roomIDs[rng.Intn(len(roomIDs))]
		daysAgo := 1 + rng.Intn(60)
		reported := now.AddDate(0, 0, -daysAgo).Format("2006-01-02")
		status := pick(rng, requestStatuses)
		var resolved any
		if status == "Resolved" {
			limit := daysAgo
			if limit > 14 {
				limit = 14
			}
			after := 1 + rng.Intn(limit)
			resolved = now.AddDate(0, 0, -(daysAgo - after)).Format("2006-01-02")
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO maintenance (room_id, issue_description, reported_date, status, resolved_date)
			 VALUES (?, ?, ?, ?, ?)`,
			roomID, pick(rng, issues), reported, status, resolved); err != nil {
			return fmt.Errorf("insert maintenance: %w", err)
		}
	}
	return nil
}

func queryInts(ctx context.Context, tx *sql.Tx, query string) ([]int, error) {
	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()
	var out []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func pick(rng *rand.Rand, pool []string) string { return pool[rng.Intn(len(pool))] }

func phone(rng *rand.Rand) string { return fmt.Sprintf("+1-555-%d", 1000+rng.Intn(9000)) }
