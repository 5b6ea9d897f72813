package services

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/s2yeji/practice-blog/internal/common"
	"github.com/s2yeji/practice-blog/internal/server/models"
)

func TestToggleLike_AddThenRemove(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	l := &fakeLikesRepo{getOut: &models.LikeRecord{PostID: 1, TotalLikes: 1, Members: []string{"alice"}}}
	rm := &fakeRepoManager{l: l}
	s := NewEngagementService(db, rm)

	mock.ExpectBegin()
	mock.ExpectCommit()
	rec, err := s.ToggleLike(context.Background(), 1, "alice")
	if err != nil {
		t.Fatalf("ToggleLike error: %v", err)
	}
	if l.delta != 1 || !l.member {
		t.Fatalf("first toggle should add: delta=%d member=%v", l.delta, l.member)
	}
	if !rec.Liked("alice") {
		t.Fatalf("record should show alice as member: %+v", rec)
	}

	mock.ExpectBegin()
	mock.ExpectCommit()
	if _, err := s.ToggleLike(context.Background(), 1, "alice"); err != nil {
		t.Fatalf("ToggleLike error: %v", err)
	}
	if l.delta != -1 || l.member {
		t.Fatalf("second toggle should remove: delta=%d member=%v", l.delta, l.member)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestToggleLike_UnknownPost(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectRollback()

	rm := &fakeRepoManager{l: &fakeLikesRepo{lockErr: common.ErrorNotFound}}
	s := NewEngagementService(db, rm)

	if _, err := s.ToggleLike(context.Background(), 9, "alice"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestToggleLike_IncrementErr_RollsBack(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectRollback()

	rm := &fakeRepoManager{l: &fakeLikesRepo{incErr: errBoom{}}}
	s := NewEngagementService(db, rm)

	_, err := s.ToggleLike(context.Background(), 1, "alice")
	if err == nil || !regexp.MustCompile(`error adjusting like total: .*boom`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped increment error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestGetLikes(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{l: &fakeLikesRepo{getOut: &models.LikeRecord{PostID: 1, TotalLikes: 2}}}
	rec, err := NewEngagementService(db, rm).GetLikes(context.Background(), 1)
	if err != nil || rec.TotalLikes != 2 {
		t.Fatalf("GetLikes: got (%+v, %v)", rec, err)
	}
}

func TestAddComment(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{cm: &fakeCommentsRepo{}}
	s := NewEngagementService(db, rm)

	c, err := s.AddComment(context.Background(), &models.Comment{PostID: 1, Body: "hi", AuthorID: "alice"})
	if err != nil || c.Body != "hi" {
		t.Fatalf("AddComment: got (%+v, %v)", c, err)
	}

	rmErr := &fakeRepoManager{cm: &fakeCommentsRepo{createErr: errBoom{}}}
	_, err = NewEngagementService(db, rmErr).AddComment(context.Background(), &models.Comment{})
	if err == nil || !regexp.MustCompile(`error creating comment: .*boom`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestListComments(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := &fakeRepoManager{cm: &fakeCommentsRepo{listOut: []*models.Comment{{ID: 2}, {ID: 1}}}}
	got, err := NewEngagementService(db, rm).ListComments(context.Background(), 1)
	if err != nil || len(got) != 2 || got[0].ID != 2 {
		t.Fatalf("ListComments: got (%+v, %v)", got, err)
	}
}
