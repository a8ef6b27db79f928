package todoapi

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"tasktrack/cmd/internal/todo"
)

const dateOnly = "2006-01-02"

type taskResponse struct {
	ID          string     `json:"id"`
	Owner       string     `json:"owner"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type createRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Priority    string  `json:"priority"`
	DueDate     *string `json:"dueDate"`
}

func toTaskResponse(t todo.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		Owner:       t.OwnerID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    string(t.Priority),
		DueDate:     t.DueDate,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func toTaskResponses(ts []todo.Task) []taskResponse {
	out := make([]taskResponse, 0, len(ts))
	for _, t := range ts {
		out = append(out, toTaskResponse(t))
	}
	return out
}

// parseDueDate accepts RFC 3339 timestamps and bare YYYY-MM-DD dates (UTC midnight).
func parseDueDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(dateOnly, s); err == nil {
		return t, nil
	}
	return time.Time{}, errors.New("dueDate must be an RFC 3339 timestamp or YYYY-MM-DD")
}

func (req createRequest) toInput() (todo.CreateInput, error) {
	in := todo.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    todo.Priority(req.Priority),
	}
	if req.DueDate != nil && strings.TrimSpace(*req.DueDate) != "" {
		d, err := parseDueDate(*req.DueDate)
		if err != nil {
			return todo.CreateInput{}, err
		}
		in.DueDate = &d
	}
	return in, nil
}

// parsePatch builds a todo.Patch from a JSON object. Keys that are not
// patchable (id, owner, timestamps, unknown fields) are ignored; null clears
// description and dueDate.
func parsePatch(raw map[string]json.RawMessage) (todo.Patch, error) {
	var p todo.Patch

	if v, ok := raw["title"]; ok {
		if isNull(v) {
			p.Title = todo.Null[string]()
		} else {
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				return todo.Patch{}, errors.New("title must be a string")
			}
			p.Title = todo.Value(s)
		}
	}

	if v, ok := raw["description"]; ok {
		if isNull(v) {
			p.Description = todo.Null[string]()
		} else {
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				return todo.Patch{}, errors.New("description must be a string or null")
			}
			p.Description = todo.Value(s)
		}
	}

	if v, ok := raw["priority"]; ok {
		if isNull(v) {
			p.Priority = todo.Null[todo.Priority]()
		} else {
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				return todo.Patch{}, errors.New("priority must be a string")
			}
			p.Priority = todo.Value(todo.Priority(s))
		}
	}

	if v, ok := raw["dueDate"]; ok {
		if isNull(v) {
			p.DueDate = todo.Null[time.Time]()
		} else {
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				return todo.Patch{}, errors.New("dueDate must be a string or null")
			}
			if strings.TrimSpace(s) == "" {
				p.DueDate = todo.Null[time.Time]()
			} else {
				d, err := parseDueDate(s)
				if err != nil {
					return todo.Patch{}, err
				}
				p.DueDate = todo.Value(d)
			}
		}
	}

	if v, ok := raw["completed"]; ok {
		if isNull(v) {
			p.Completed = todo.Null[bool]()
		} else {
			var b bool
			if err := json.Unmarshal(v, &b); err != nil {
				return todo.Patch{}, errors.New("completed must be a boolean")
			}
			p.Completed = todo.Value(b)
		}
	}

	return p, nil
}

func isNull(v json.RawMessage) bool {
	return strings.TrimSpace(string(v)) == "null"
}
