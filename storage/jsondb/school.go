package jsondb

import (
	"sync"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/school"
)

const (
	gradesFile     = "grades.json"
	scheduleFile   = "schedule.json"
	attendanceFile = "attendance.json"
	remarksFile    = "remarks.json"
	parentsFile    = "parents.json"
)

// schoolRepository holds the five record collections, each backed by its own
// document and guarded by its own lock.
type schoolRepository struct {
	dir string

	gradesMu sync.RWMutex
	grades   []school.Grade

	scheduleMu sync.RWMutex
	schedule   []school.ScheduleEntry

	attendanceMu sync.RWMutex
	attendance   []school.AttendanceRecord

	remarksMu sync.RWMutex
	remarks   []school.Remark

	parentsMu sync.RWMutex
	parents   []school.ParentLink
}

var _ school.Repository = (*schoolRepository)(nil)

func newSchoolRepository(dir string, logger core.Logger) *schoolRepository {
	repo := &schoolRepository{dir: dir}
	load(dir, gradesFile, &repo.grades, logger)
	load(dir, scheduleFile, &repo.schedule, logger)
	load(dir, attendanceFile, &repo.attendance, logger)
	load(dir, remarksFile, &repo.remarks, logger)
	load(dir, parentsFile, &repo.parents, logger)
	return repo
}

// Grades

func (repo *schoolRepository) CreateGrade(g school.Grade) (school.Grade, error) {
	repo.gradesMu.Lock()
	defer repo.gradesMu.Unlock()

	max := 0
	for _, cur := range repo.grades {
		if cur.ID > max {
			max = cur.ID
		}
	}
	g.ID = max + 1
	repo.grades = append(repo.grades, g)
	if err := save(repo.dir, gradesFile, repo.grades); err != nil {
		return school.Grade{}, err
	}
	return g, nil
}

func (repo *schoolRepository) QueryAllGrades() ([]school.Grade, error) {
	repo.gradesMu.RLock()
	defer repo.gradesMu.RUnlock()

	grades := make([]school.Grade, len(repo.grades))
	copy(grades, repo.grades)
	return grades, nil
}

func (repo *schoolRepository) QueryGradesByStudent(username string) ([]school.Grade, error) {
	repo.gradesMu.RLock()
	defer repo.gradesMu.RUnlock()

	grades := make([]school.Grade, 0)
	for _, g := range repo.grades {
		if g.Student == username {
			grades = append(grades, g)
		}
	}
	return grades, nil
}

func (repo *schoolRepository) GetGradeByID(id int) (school.Grade, error) {
	repo.gradesMu.RLock()
	defer repo.gradesMu.RUnlock()

	for _, g := range repo.grades {
		if g.ID == id {
			return g, nil
		}
	}
	return school.Grade{}, school.ErrGradeNotFound
}

func (repo *schoolRepository) UpdateGrade(g school.Grade) (school.Grade, error) {
	repo.gradesMu.Lock()
	defer repo.gradesMu.Unlock()

	for i, cur := range repo.grades {
		if cur.ID == g.ID {
			repo.grades[i] = g
			if err := save(repo.dir, gradesFile, repo.grades); err != nil {
				return school.Grade{}, err
			}
			return g, nil
		}
	}
	return school.Grade{}, school.ErrGradeNotFound
}

func (repo *schoolRepository) DeleteGradeByID(id int) error {
	repo.gradesMu.Lock()
	defer repo.gradesMu.Unlock()

	kept := repo.grades[:0]
	for _, g := range repo.grades {
		if g.ID != id {
			kept = append(kept, g)
		}
	}
	repo.grades = kept
	return save(repo.dir, gradesFile, repo.grades)
}

// Schedule

func (repo *schoolRepository) CreateScheduleEntry(e school.ScheduleEntry) (school.ScheduleEntry, error) {
	repo.scheduleMu.Lock()
	defer repo.scheduleMu.Unlock()

	max := 0
	for _, cur := range repo.schedule {
		if cur.ID > max {
			max = cur.ID
		}
	}
	e.ID = max + 1
	repo.schedule = append(repo.schedule, e)
	if err := save(repo.dir, scheduleFile, repo.schedule); err != nil {
		return school.ScheduleEntry{}, err
	}
	return e, nil
}

func (repo *schoolRepository) QueryAllSchedule() ([]school.ScheduleEntry, error) {
	repo.scheduleMu.RLock()
	defer repo.scheduleMu.RUnlock()

	entries := make([]school.ScheduleEntry, len(repo.schedule))
	copy(entries, repo.schedule)
	return entries, nil
}

func (repo *schoolRepository) GetScheduleEntryByID(id int) (school.ScheduleEntry, error) {
	repo.scheduleMu.RLock()
	defer repo.scheduleMu.RUnlock()

	for _, e := range repo.schedule {
		if e.ID == id {
			return e, nil
		}
	}
	return school.ScheduleEntry{}, school.ErrScheduleNotFound
}

func (repo *schoolRepository) UpdateScheduleEntry(e school.ScheduleEntry) (school.ScheduleEntry, error) {
	repo.scheduleMu.Lock()
	defer repo.scheduleMu.Unlock()

	for i, cur := range repo.schedule {
		if cur.ID == e.ID {
			repo.schedule[i] = e
			if err := save(repo.dir, scheduleFile, repo.schedule); err != nil {
				return school.ScheduleEntry{}, err
			}
			return e, nil
		}
	}
	return school.ScheduleEntry{}, school.ErrScheduleNotFound
}

func (repo *schoolRepository) DeleteScheduleEntryByID(id int) error {
	repo.scheduleMu.Lock()
	defer repo.scheduleMu.Unlock()

	kept := repo.schedule[:0]
	for _, e := range repo.schedule {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	repo.schedule = kept
	return save(repo.dir, scheduleFile, repo.schedule)
}

// Attendance

func (repo *schoolRepository) CreateAttendance(a school.AttendanceRecord) (school.AttendanceRecord, error) {
	repo.attendanceMu.Lock()
	defer repo.attendanceMu.Unlock()

	max := 0
	for _, cur := range repo.attendance {
		if cur.ID > max {
			max = cur.ID
		}
	}
	a.ID = max + 1
	repo.attendance = append(repo.attendance, a)
	if err := save(repo.dir, attendanceFile, repo.attendance); err != nil {
		return school.AttendanceRecord{}, err
	}
	return a, nil
}

func (repo *schoolRepository) QueryAllAttendance() ([]school.AttendanceRecord, error) {
	repo.attendanceMu.RLock()
	defer repo.attendanceMu.RUnlock()

	records := make([]school.AttendanceRecord, len(repo.attendance))
	copy(records, repo.attendance)
	return records, nil
}

func (repo *schoolRepository) QueryAttendanceByStudent(username string) ([]school.AttendanceRecord, error) {
	repo.attendanceMu.RLock()
	defer repo.attendanceMu.RUnlock()

	records := make([]school.AttendanceRecord, 0)
	for _, a := range repo.attendance {
		if a.Student == username {
			records = append(records, a)
		}
	}
	return records, nil
}

func (repo *schoolRepository) GetAttendanceByID(id int) (school.AttendanceRecord, error) {
	repo.attendanceMu.RLock()
	defer repo.attendanceMu.RUnlock()

	for _, a := range repo.attendance {
		if a.ID == id {
			return a, nil
		}
	}
	return school.AttendanceRecord{}, school.ErrAttendanceNotFound
}

func (repo *schoolRepository) UpdateAttendance(a school.AttendanceRecord) (school.AttendanceRecord, error) {
	repo.attendanceMu.Lock()
	defer repo.attendanceMu.Unlock()

	for i, cur := range repo.attendance {
		if cur.ID == a.ID {
			repo.attendance[i] = a
			if err := save(repo.dir, attendanceFile, repo.attendance); err != nil {
				return school.AttendanceRecord{}, err
			}
			return a, nil
		}
	}
	return school.AttendanceRecord{}, school.ErrAttendanceNotFound
}

func (repo *schoolRepository) DeleteAttendanceByID(id int) error {
	repo.attendanceMu.Lock()
	defer repo.attendanceMu.Unlock()

	kept := repo.attendance[:0]
	for _, a := range repo.attendance {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	repo.attendance = kept
	return save(repo.dir, attendanceFile, repo.attendance)
}

// Remarks

func (repo *schoolRepository) CreateRemark(r school.Remark) (school.Remark, error) {
	repo.remarksMu.Lock()
	defer repo.remarksMu.Unlock()

	max := 0
	for _, cur := range repo.remarks {
		if cur.ID > max {
			max = cur.ID
		}
	}
	r.ID = max + 1
	repo.remarks = append(repo.remarks, r)
	if err := save(repo.dir, remarksFile, repo.remarks); err != nil {
		return school.Remark{}, err
	}
	return r, nil
}

func (repo *schoolRepository) QueryAllRemarks() ([]school.Remark, error) {
	repo.remarksMu.RLock()
	defer repo.remarksMu.RUnlock()

	remarks := make([]school.Remark, len(repo.remarks))
	copy(remarks, repo.remarks)
	return remarks, nil
}

func (repo *schoolRepository) QueryRemarksByStudent(username string) ([]school.Remark, error) {
	repo.remarksMu.RLock()
	defer repo.remarksMu.RUnlock()

	remarks := make([]school.Remark, 0)
	for _, r := range repo.remarks {
		if r.Student == username {
			remarks = append(remarks, r)
		}
	}
	return remarks, nil
}

func (repo *schoolRepository) GetRemarkByID(id int) (school.Remark, error) {
	repo.remarksMu.RLock()
	defer repo.remarksMu.RUnlock()

	for _, r := range repo.remarks {
		if r.ID == id {
			return r, nil
		}
	}
	return school.Remark{}, school.ErrRemarkNotFound
}

func (repo *schoolRepository) UpdateRemark(r school.Remark) (school.Remark, error) {
	repo.remarksMu.Lock()
	defer repo.remarksMu.Unlock()

	for i, cur := range repo.remarks {
		if cur.ID == r.ID {
			repo.remarks[i] = r
			if err := save(repo.dir, remarksFile, repo.remarks); err != nil {
				return school.Remark{}, err
			}
			return r, nil
		}
	}
	return school.Remark{}, school.ErrRemarkNotFound
}

func (repo *schoolRepository) DeleteRemarkByID(id int) error {
	repo.remarksMu.Lock()
	defer repo.remarksMu.Unlock()

	kept := repo.remarks[:0]
	for _, r := range repo.remarks {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	repo.remarks = kept
	return save(repo.dir, remarksFile, repo.remarks)
}

// Parent links

func (repo *schoolRepository) CreateParentLink(p school.ParentLink) (school.ParentLink, error) {
	repo.parentsMu.Lock()
	defer repo.parentsMu.Unlock()

	max := 0
	for _, cur := range repo.parents {
		if cur.ID > max {
			max = cur.ID
		}
	}
	p.ID = max + 1
	repo.parents = append(repo.parents, p)
	if err := save(repo.dir, parentsFile, repo.parents); err != nil {
		return school.ParentLink{}, err
	}
	return p, nil
}

func (repo *schoolRepository) QueryAllParentLinks() ([]school.ParentLink, error) {
	repo.parentsMu.RLock()
	defer repo.parentsMu.RUnlock()

	parents := make([]school.ParentLink, len(repo.parents))
	copy(parents, repo.parents)
	return parents, nil
}

func (repo *schoolRepository) GetParentLinkByID(id int) (school.ParentLink, error) {
	repo.parentsMu.RLock()
	defer repo.parentsMu.RUnlock()

	for _, p := range repo.parents {
		if p.ID == id {
			return p, nil
		}
	}
	return school.ParentLink{}, school.ErrParentNotFound
}

func (repo *schoolRepository) GetParentLinkByStudent(username string) (school.ParentLink, error) {
	repo.parentsMu.RLock()
	defer repo.parentsMu.RUnlock()

	for _, p := range repo.parents {
		if p.StudentUsername == username {
			return p, nil
		}
	}
	return school.ParentLink{}, school.ErrParentNotFound
}

func (repo *schoolRepository) UpdateParentLink(p school.ParentLink) (school.ParentLink, error) {
	repo.parentsMu.Lock()
	defer repo.parentsMu.Unlock()

	for i, cur := range repo.parents {
		if cur.ID == p.ID {
			repo.parents[i] = p
			if err := save(repo.dir, parentsFile, repo.parents); err != nil {
				return school.ParentLink{}, err
			}
			return p, nil
		}
	}
	return school.ParentLink{}, school.ErrParentNotFound
}

func (repo *schoolRepository) DeleteParentLinkByID(id int) error {
	repo.parentsMu.Lock()
	defer repo.parentsMu.Unlock()

	kept := repo.parents[:0]
	for _, p := range repo.parents {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	repo.parents = kept
	return save(repo.dir, parentsFile, repo.parents)
}
