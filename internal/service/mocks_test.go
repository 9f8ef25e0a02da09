package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"testing"

	"github.com/ydahmen/student-records/internal/apperror"
	"github.com/ydahmen/student-records/internal/auth"
	"github.com/ydahmen/student-records/internal/mail"
	"github.com/ydahmen/student-records/internal/model"
	"github.com/ydahmen/student-records/internal/repository"
)

// discardLogger swallows service log output so test runs stay readable.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// disabledMailer returns a mailer with no SMTP config; SendStudentID fails,
// which the register path must treat as non-fatal.
func disabledMailer() *mail.Mailer {
	return mail.New(mail.Config{}, discardLogger())
}

// mockUserRepo is an in-memory UserRepository.
type mockUserRepo struct {
	users    map[string]*model.User // keyed by username
	students *mockStudentRepo       // for CreateAccount's student half; may be nil

	createAccountErr error // forced failure for CreateAccount
}

var _ repository.UserRepository = (*mockUserRepo)(nil)

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) CreateUser(_ context.Context, user *model.User) error {
	if _, exists := m.users[user.Username]; exists {
		return apperror.Conflict("user", fmt.Sprintf("username %q is already taken", user.Username))
	}
	user.ID = fmt.Sprintf("user-%d", len(m.users)+1)
	cp := *user
	m.users[user.Username] = &cp
	return nil
}

func (m *mockUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.NotFound("user", id)
}

func (m *mockUserRepo) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	u, ok := m.users[username]
	if !ok {
		return nil, apperror.NotFound("user", username)
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) CountByRole(_ context.Context, role model.Role) (int, error) {
	count := 0
	for _, u := range m.users {
		if u.Role == role {
			count++
		}
	}
	return count, nil
}

func (m *mockUserRepo) CreateAccount(ctx context.Context, student *model.Student, user *model.User) error {
	if m.createAccountErr != nil {
		return m.createAccountErr
	}
	if _, exists := m.users[user.Username]; exists {
		return apperror.Conflict("user", fmt.Sprintf("username %q is already taken", user.Username))
	}
	if m.students != nil {
		if err := m.students.Create(ctx, student); err != nil {
			return err
		}
	}
	user.StudentID = student.ID
	return m.CreateUser(ctx, user)
}

// mockStudentRepo is an in-memory StudentRepository plus MarkRepository.
type mockStudentRepo struct {
	students map[string]*model.Student
	marks    map[string][]model.Mark // keyed by student id

	listErr error // forced failure for List
}

var (
	_ repository.StudentRepository = (*mockStudentRepo)(nil)
	_ repository.MarkRepository    = (*mockStudentRepo)(nil)
)

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{
		students: make(map[string]*model.Student),
		marks:    make(map[string][]model.Mark),
	}
}

func (m *mockStudentRepo) Create(_ context.Context, student *model.Student) error {
	if _, exists := m.students[student.ID]; exists {
		return apperror.Conflict("student", "id already exists")
	}
	cp := *student
	m.students[student.ID] = &cp
	return nil
}

func (m *mockStudentRepo) GetByID(_ context.Context, id string) (*model.Student, error) {
	s, ok := m.students[id]
	if !ok {
		return nil, apperror.NotFound("student", id)
	}
	cp := *s
	return &cp, nil
}

// List honors only the filter fields the service tests exercise:
// StudentID pinning and exact major/grade matching, with a stable order.
func (m *mockStudentRepo) List(_ context.Context, filter repository.StudentFilter) ([]model.Student, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := []model.Student{}
	for _, s := range m.students {
		if filter.StudentID != "" && s.ID != filter.StudentID {
			continue
		}
		if filter.Major != "" && s.Major != filter.Major {
			continue
		}
		if filter.Grade != "" && s.Grade != filter.Grade {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockStudentRepo) Update(_ context.Context, student *model.Student) error {
	if _, ok := m.students[student.ID]; !ok {
		return apperror.NotFound("student", student.ID)
	}
	cp := *student
	m.students[student.ID] = &cp
	return nil
}

func (m *mockStudentRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.students[id]; !ok {
		return apperror.NotFound("student", id)
	}
	delete(m.students, id)
	delete(m.marks, id)
	return nil
}

func (m *mockStudentRepo) CreateMark(_ context.Context, mark *model.Mark) error {
	mark.ID = fmt.Sprintf("mark-%d", len(m.marks[mark.StudentID])+1)
	m.marks[mark.StudentID] = append(m.marks[mark.StudentID], *mark)
	return nil
}

func (m *mockStudentRepo) ListMarksByStudent(_ context.Context, studentID string) ([]model.Mark, error) {
	return append([]model.Mark{}, m.marks[studentID]...), nil
}

func (m *mockStudentRepo) ListSubjects(_ context.Context) ([]string, error) {
	seen := make(map[string]bool)
	for _, ms := range m.marks {
		for _, mk := range ms {
			seen[mk.Subject] = true
		}
	}
	subjects := make([]string, 0, len(seen))
	for s := range seen {
		subjects = append(subjects, s)
	}
	sort.Strings(subjects)
	return subjects, nil
}

// newTestAuthService wires an AuthService over fresh mocks with fast bcrypt
// and a disabled mailer.
func newTestAuthService(t *testing.T) (*AuthService, *mockUserRepo) {
	t.Helper()

	users := newMockUserRepo()
	users.students = newMockStudentRepo()

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	svc := NewAuthService(users, tokens, auth.NewPasswordServiceForTest(4), disabledMailer(), discardLogger())
	return svc, users
}
