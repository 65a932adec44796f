package store

import (
	"testing"

	"github.com/TECHTUNE-I-T-SOLUTIONS/testman-sub001/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("newTestStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func insertTestStudent(t *testing.T, s *Store, matricNo string) int64 {
	t.Helper()
	id, err := s.CreateStudent(model.Student{
		MatricNo:     matricNo,
		Name:         "Student " + matricNo,
		Email:        matricNo + "@example.edu",
		PasswordHash: "x",
		Role:         model.RoleStudent,
		Active:       true,
	})
	if err != nil {
		t.Fatalf("insertTestStudent: %v", err)
	}
	return id
}

func TestStudentCRUD(t *testing.T) {
	s := newTestStore(t)

	count, err := s.StudentCount()
	if err != nil {
		t.Fatalf("StudentCount: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 students, got %d", count)
	}

	id := insertTestStudent(t, s, "U19CS1001")

	st, err := s.GetStudentByID(id)
	if err != nil {
		t.Fatalf("GetStudentByID: %v", err)
	}
	if st == nil || st.MatricNo != "U19CS1001" {
		t.Fatalf("unexpected student: %+v", st)
	}
	if st.Role != model.RoleStudent {
		t.Errorf("expected role student, got %q", st.Role)
	}

	st, err = s.GetStudentByMatricNo("U19CS1001")
	if err != nil {
		t.Fatalf("GetStudentByMatricNo: %v", err)
	}
	if st == nil || st.ID != id {
		t.Fatalf("unexpected student by matric no: %+v", st)
	}

	// Missing students come back nil, not an error.
	st, err = s.GetStudentByMatricNo("NOPE")
	if err != nil {
		t.Fatalf("GetStudentByMatricNo missing: %v", err)
	}
	if st != nil {
		t.Error("expected nil for missing student")
	}

	// Duplicate matric numbers are rejected.
	if _, err := s.CreateStudent(model.Student{MatricNo: "U19CS1001", Name: "Dup", PasswordHash: "x", Role: model.RoleStudent}); err == nil {
		t.Error("expected error for duplicate matric number")
	}

	insertTestStudent(t, s, "U19CS1002")
	students, err := s.ListStudents()
	if err != nil {
		t.Fatalf("ListStudents: %v", err)
	}
	if len(students) != 2 {
		t.Fatalf("expected 2 students, got %d", len(students))
	}

	if err := s.ToggleStudentActive(id); err != nil {
		t.Fatalf("ToggleStudentActive: %v", err)
	}
	st, _ = s.GetStudentByID(id)
	if st.Active {
		t.Error("expected student to be inactive after toggle")
	}
}

func TestAuthSessions(t *testing.T) {
	s := newTestStore(t)
	id := insertTestStudent(t, s, "U19CS1001")

	token, err := s.CreateAuthSession(id)
	if err != nil {
		t.Fatalf("CreateAuthSession: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	sess, err := s.GetAuthSession(token)
	if err != nil {
		t.Fatalf("GetAuthSession: %v", err)
	}
	if sess == nil || sess.StudentID != id {
		t.Fatalf("unexpected session: %+v", sess)
	}

	// Unknown tokens come back nil.
	sess, err = s.GetAuthSession("bogus")
	if err != nil {
		t.Fatalf("GetAuthSession bogus: %v", err)
	}
	if sess != nil {
		t.Error("expected nil session for unknown token")
	}

	if err := s.DeleteAuthSession(token); err != nil {
		t.Fatalf("DeleteAuthSession: %v", err)
	}
	sess, _ = s.GetAuthSession(token)
	if sess != nil {
		t.Error("expected nil session after delete")
	}
}

func TestMaterials(t *testing.T) {
	s := newTestStore(t)
	id := insertTestStudent(t, s, "U19CS1001")
	other := insertTestStudent(t, s, "U19CS1002")

	m := model.StudyMaterial{
		ID:               "mat-1",
		StudentID:        id,
		Title:            "Thermodynamics notes",
		Subject:          "PHY201",
		ExtractedText:    "The first law of thermodynamics...",
		ProcessingStatus: model.ProcessingCompleted,
	}
	if err := s.InsertMaterial(m); err != nil {
		t.Fatalf("InsertMaterial: %v", err)
	}
	if err := s.InsertMaterial(model.StudyMaterial{
		ID: "mat-2", StudentID: id, Title: "Pending upload", ProcessingStatus: model.ProcessingPending,
	}); err != nil {
		t.Fatalf("InsertMaterial pending: %v", err)
	}

	got, err := s.GetMaterial("mat-1", id)
	if err != nil {
		t.Fatalf("GetMaterial: %v", err)
	}
	if got == nil || got.Title != "Thermodynamics notes" {
		t.Fatalf("unexpected material: %+v", got)
	}

	// Ownership is part of the key.
	got, err = s.GetMaterial("mat-1", other)
	if err != nil {
		t.Fatalf("GetMaterial other owner: %v", err)
	}
	if got != nil {
		t.Error("expected nil for material owned by someone else")
	}

	list, err := s.ListMaterials(id)
	if err != nil {
		t.Fatalf("ListMaterials: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 materials, got %d", len(list))
	}

	// Only completed materials are eligible for generation.
	completed, err := s.ListCompletedMaterials(id, []string{"mat-1", "mat-2", "mat-404"})
	if err != nil {
		t.Fatalf("ListCompletedMaterials: %v", err)
	}
	if len(completed) != 1 || completed[0].ID != "mat-1" {
		t.Fatalf("expected only mat-1, got %+v", completed)
	}

	ok, err := s.DeleteMaterial("mat-1", id)
	if err != nil || !ok {
		t.Fatalf("DeleteMaterial: ok=%v err=%v", ok, err)
	}
	ok, err = s.DeleteMaterial("mat-1", id)
	if err != nil {
		t.Fatalf("DeleteMaterial second: %v", err)
	}
	if ok {
		t.Error("expected false for already-deleted material")
	}
}

func TestAnnouncements(t *testing.T) {
	s := newTestStore(t)
	admin := insertTestStudent(t, s, "admin")

	id, err := s.CreateAnnouncement(model.Announcement{
		Title:     "Exam week",
		Body:      "Practice exams close on Friday.",
		CreatedBy: admin,
	})
	if err != nil {
		t.Fatalf("CreateAnnouncement: %v", err)
	}

	list, err := s.ListAnnouncements()
	if err != nil {
		t.Fatalf("ListAnnouncements: %v", err)
	}
	if len(list) != 1 || list[0].Title != "Exam week" {
		t.Fatalf("unexpected announcements: %+v", list)
	}

	ok, err := s.DeleteAnnouncement(id)
	if err != nil || !ok {
		t.Fatalf("DeleteAnnouncement: ok=%v err=%v", ok, err)
	}
	ok, _ = s.DeleteAnnouncement(id)
	if ok {
		t.Error("expected false for missing announcement")
	}
}

func TestDeleteStudentCascade(t *testing.T) {
	s := newTestStore(t)
	id := insertTestStudent(t, s, "U19CS1001")

	if err := s.InsertMaterial(model.StudyMaterial{ID: "mat-1", StudentID: id, Title: "T", ProcessingStatus: model.ProcessingCompleted}); err != nil {
		t.Fatalf("InsertMaterial: %v", err)
	}
	if err := s.InsertExam(model.ExamInstance{ID: "exam-1", StudentID: id, Title: "T", Questions: []model.Question{}, Status: model.ExamActive}); err != nil {
		t.Fatalf("InsertExam: %v", err)
	}
	if _, err := s.IncrementUsage(id, "2026-08-31"); err != nil {
		t.Fatalf("IncrementUsage: %v", err)
	}
	if _, err := s.CreateAuthSession(id); err != nil {
		t.Fatalf("CreateAuthSession: %v", err)
	}

	if err := s.DeleteStudentCascade(id); err != nil {
		t.Fatalf("DeleteStudentCascade: %v", err)
	}

	if st, _ := s.GetStudentByID(id); st != nil {
		t.Error("expected student gone")
	}
	if m, _ := s.GetMaterial("mat-1", id); m != nil {
		t.Error("expected material gone")
	}
	if e, _ := s.GetExam("exam-1", id); e != nil {
		t.Error("expected exam gone")
	}
	if l, _ := s.GetLedger(id); l != nil {
		t.Error("expected ledger gone")
	}
}

func TestExportCompletedExams(t *testing.T) {
	s := newTestStore(t)
	id := insertTestStudent(t, s, "U19CS1001")

	if err := s.InsertExam(model.ExamInstance{
		ID: "exam-1", StudentID: id, Title: "Active one", Questions: []model.Question{}, Status: model.ExamActive,
	}); err != nil {
		t.Fatalf("InsertExam: %v", err)
	}
	if err := s.InsertExam(model.ExamInstance{
		ID: "exam-2", StudentID: id, Title: "Done one", Questions: []model.Question{}, Status: model.ExamActive,
	}); err != nil {
		t.Fatalf("InsertExam: %v", err)
	}
	if ok, err := s.CompleteExam("exam-2", id, map[string]string{}, 2, 3, 67, 120); err != nil || !ok {
		t.Fatalf("CompleteExam: ok=%v err=%v", ok, err)
	}

	export, err := s.ExportCompletedExams()
	if err != nil {
		t.Fatalf("ExportCompletedExams: %v", err)
	}
	if export.NumExams != 1 {
		t.Fatalf("expected 1 exported exam, got %d", export.NumExams)
	}
	if len(export.Results) != 1 || export.Results[0].MatricNo != "U19CS1001" {
		t.Fatalf("unexpected results: %+v", export.Results)
	}
	res := export.Results[0].Exams[0]
	if res.ExamID != "exam-2" || res.Percentage != 67 {
		t.Errorf("unexpected exam result: %+v", res)
	}
}
