package service

import (
	"strconv"
	"time"

	"taskboard/internal/model"
)

const dateLayout = "2006-01-02"

type UserRef struct {
	ID        string  `json:"id"`
	Username  string  `json:"username"`
	AvatarURL *string `json:"avatar_url"`
}

type TeamRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type LabelRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// CommentView is the chat-style comment shape the board client renders.
type CommentView struct {
	ID          string    `json:"id"`
	Message     string    `json:"message"`
	CreatedAt   time.Time `json:"created_at"`
	MessageType string    `json:"message_type"`
	Name        string    `json:"name"`
	AvatarURL   *string   `json:"avatar_url"`
}

type HistoryView struct {
	ID                uint      `json:"id"`
	Task              uint      `json:"task"`
	ChangedBy         *uint     `json:"changed_by"`
	ChangeDescription string    `json:"change_description"`
	CreatedAt         time.Time `json:"created_at"`
}

// TaskView is the serialized task. Due holds the start and end dates as
// millisecond timestamps, in that order, skipping missing ones.
type TaskView struct {
	ID             uint          `json:"id"`
	Name           string        `json:"name"`
	Description    string        `json:"description"`
	Priority       string        `json:"priority"`
	StartDate      *string       `json:"start_date"`
	EndDate        *string       `json:"end_date"`
	StartTimestamp *int64        `json:"start_timestamp"`
	EndTimestamp   *int64        `json:"end_timestamp"`
	Due            []int64       `json:"due"`
	CreatedAt      time.Time     `json:"created_at"`
	Order          int           `json:"order"`
	Column         *uint         `json:"column"`
	Status         *string       `json:"status"`
	Team           *TeamRef      `json:"team"`
	Reporter       UserRef       `json:"reporter"`
	Assignees      []UserRef     `json:"assignees"`
	Labels         []LabelRef    `json:"labels"`
	Comments       []CommentView `json:"comments,omitempty"`
	History        []HistoryView `json:"history,omitempty"`
}

func NewTaskView(t *model.Task) TaskView {
	v := TaskView{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Priority:    string(t.Priority),
		Due:         []int64{},
		CreatedAt:   t.CreatedAt,
		Order:       t.Order,
		Column:      t.ColumnID,
		Reporter:    NewUserRef(&t.Reporter),
		Assignees:   make([]UserRef, 0, len(t.Assignees)),
		Labels:      make([]LabelRef, 0, len(t.Labels)),
	}
	if t.StartDate != nil {
		s, ms := formatDate(*t.StartDate)
		v.StartDate, v.StartTimestamp = &s, &ms
		v.Due = append(v.Due, ms)
	}
	if t.EndDate != nil {
		s, ms := formatDate(*t.EndDate)
		v.EndDate, v.EndTimestamp = &s, &ms
		v.Due = append(v.Due, ms)
	}
	if t.Column != nil {
		title := t.Column.Title
		v.Status = &title
	}
	if t.Team != nil {
		v.Team = &TeamRef{ID: t.Team.ID, Name: t.Team.Name}
	}
	for i := range t.Assignees {
		v.Assignees = append(v.Assignees, NewUserRef(&t.Assignees[i]))
	}
	for _, l := range t.Labels {
		v.Labels = append(v.Labels, LabelRef{ID: l.ID, Name: l.Name})
	}
	for i := range t.Comments {
		v.Comments = append(v.Comments, NewCommentView(&t.Comments[i]))
	}
	for i := range t.History {
		v.History = append(v.History, NewHistoryView(&t.History[i]))
	}
	return v
}

func NewUserRef(u *model.User) UserRef {
	return UserRef{
		ID:        strconv.FormatUint(uint64(u.ID), 10),
		Username:  u.Username,
		AvatarURL: optional(u.AvatarURL),
	}
}

func NewCommentView(c *model.Comment) CommentView {
	v := CommentView{
		ID:          strconv.FormatUint(uint64(c.ID), 10),
		Message:     c.Content,
		CreatedAt:   c.CreatedAt,
		MessageType: "text",
	}
	if c.Author != nil {
		v.Name = c.Author.Username
		v.AvatarURL = optional(c.Author.AvatarURL)
	}
	return v
}

func NewHistoryView(h *model.TaskHistory) HistoryView {
	return HistoryView{
		ID:                h.ID,
		Task:              h.TaskID,
		ChangedBy:         h.ChangedByID,
		ChangeDescription: h.ChangeDescription,
		CreatedAt:         h.CreatedAt,
	}
}

// formatDate renders a calendar date and its UTC midnight in epoch milliseconds.
func formatDate(d time.Time) (string, int64) {
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return day.Format(dateLayout), day.UnixMilli()
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
