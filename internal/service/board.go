package service

import (
	"context"
	"sort"
	"strconv"

	"taskboard/internal/model"
)

type BoardColumn struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	TaskIDs []string `json:"taskIds"`
}

// BoardView groups tasks by column. Ordered lists column ids left to right.
type BoardView struct {
	Columns map[string]BoardColumn `json:"columns"`
	Ordered []string               `json:"ordered"`
	Tasks   map[string]TaskView    `json:"tasks"`
}

type BoardResponse struct {
	Board BoardView `json:"board"`
}

// Project builds the board for an already scoped task list. Columns are
// ordered by priority, then id. Inside a column tasks keep their input
// order except where Order differs. Tasks without a column, or whose
// column is not in columns, appear neither in a bucket nor in Tasks.
func Project(tasks []model.Task, columns []model.Column) BoardView {
	cols := make([]model.Column, len(columns))
	copy(cols, columns)
	sort.SliceStable(cols, func(i, j int) bool {
		if cols[i].Priority != cols[j].Priority {
			return cols[i].Priority < cols[j].Priority
		}
		return cols[i].ID < cols[j].ID
	})

	view := BoardView{
		Columns: make(map[string]BoardColumn, len(cols)),
		Ordered: make([]string, 0, len(cols)),
		Tasks:   make(map[string]TaskView),
	}

	buckets := make(map[uint][]*model.Task, len(cols))
	for _, c := range cols {
		buckets[c.ID] = nil
	}
	for i := range tasks {
		t := &tasks[i]
		if t.ColumnID == nil {
			continue
		}
		if _, ok := buckets[*t.ColumnID]; !ok {
			continue
		}
		buckets[*t.ColumnID] = append(buckets[*t.ColumnID], t)
	}

	for _, c := range cols {
		id := strconv.FormatUint(uint64(c.ID), 10)
		bucket := buckets[c.ID]
		sort.SliceStable(bucket, func(i, j int) bool { return bucket[i].Order < bucket[j].Order })

		taskIDs := make([]string, 0, len(bucket))
		for _, t := range bucket {
			tid := strconv.FormatUint(uint64(t.ID), 10)
			taskIDs = append(taskIDs, tid)
			view.Tasks[tid] = NewTaskView(t)
		}
		view.Columns[id] = BoardColumn{ID: id, Name: c.Title, TaskIDs: taskIDs}
		view.Ordered = append(view.Ordered, id)
	}
	return view
}

// BoardCache is an optional read-through cache for rendered boards.
type BoardCache interface {
	Get(ctx context.Context, userID uint, dst any) bool
	Set(ctx context.Context, userID uint, v any)
}

type BoardService struct {
	policy  VisibilityPolicy
	columns ColumnStore
	cache   BoardCache
}

// NewBoardService wires the board query. cache may be nil.
func NewBoardService(policy VisibilityPolicy, columns ColumnStore, cache BoardCache) *BoardService {
	return &BoardService{policy: policy, columns: columns, cache: cache}
}

func (s *BoardService) Board(ctx context.Context, userID uint) (*BoardResponse, error) {
	if s.cache != nil {
		var cached BoardResponse
		if s.cache.Get(ctx, userID, &cached) {
			return &cached, nil
		}
	}

	tasks, err := s.policy.VisibleTasks(ctx, userID)
	if err != nil {
		return nil, err
	}
	columns, err := s.columns.ListOrdered(ctx)
	if err != nil {
		return nil, err
	}

	resp := &BoardResponse{Board: Project(tasks, columns)}
	if s.cache != nil {
		s.cache.Set(ctx, userID, resp)
	}
	return resp, nil
}
